// cmd/annotree/main.go
package main

import (
	"annotree/internal/app"
	"annotree/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
