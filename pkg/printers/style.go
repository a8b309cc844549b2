package printers

import (
	"time"

	"github.com/fatih/color"
)

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

func faint(s string) string {
	return color.New(color.Faint).Sprint(s)
}

var now = time.Now

func nowStamp() string {
	return now().Format("15:04:05")
}
