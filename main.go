package main

import (
	"os"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
