package main

import (
	stdtesting "testing"

	"github.com/CalibrantLtd/Slido/internal/app"
	_ "github.com/CalibrantLtd/Slido/testing"
)

func TestMainSkipsStartupInTestMode(t *stdtesting.T) {
	app.RefreshTestMode()
	if !app.InTestMode() {
		t.Fatal("expected test mode to be enabled")
	}
	main()
}
