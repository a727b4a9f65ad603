// internal/feature/dna.go
package feature

var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = 'n'
	}
	pairs := []struct{ a, b byte }{
		{'A', 'T'}, {'C', 'G'},
		{'R', 'Y'}, // A/G  <->  C/T
		{'S', 'S'}, {'W', 'W'},
		{'K', 'M'},
		{'B', 'V'},
		{'D', 'H'},
		{'N', 'N'},
		{'-', '-'}, {'.', '.'},
	}
	for _, p := range pairs {
		complement[p.a], complement[p.b] = p.b, p.a
		la, lb := lower(p.a), lower(p.b)
		complement[la], complement[lb] = lb, la
	}
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// Complement returns the IUPAC complement of a base, keeping case. Unknown
// bytes complement to 'n'.
func Complement(b byte) byte { return complement[b] }

// ReverseComplement reverse-complements seq in place.
func ReverseComplement(seq []byte) {
	for i, j := 0, len(seq)-1; i <= j; i, j = i+1, j-1 {
		seq[i], seq[j] = complement[seq[j]], complement[seq[i]]
	}
}
