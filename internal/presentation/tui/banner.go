package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Espalier.
func PrintBanner() {
	p := termenv.ColorProfile()
	s1 := termenv.String("  ______                 _ _").Foreground(p.Color("#34d399"))
	s2 := termenv.String(" |  ____|               | (_)").Foreground(p.Color("#2dd4bf"))
	s3 := termenv.String(" | |__   ___ _ __   __ _| |_  ___ _ __").Foreground(p.Color("#22d3ee"))
	s4 := termenv.String(" |  __| / __| '_ \\ / _` | | |/ _ \\ '__|").Foreground(p.Color("#38bdf8"))
	s5 := termenv.String(" | |____\\__ \\ |_) | (_| | | |  __/ |").Foreground(p.Color("#60a5fa"))
	s6 := termenv.String(" |______|___/ .__/ \\__,_|_|_|\\___|_|").Foreground(p.Color("#818cf8"))
	s7 := termenv.String("            | |").Foreground(p.Color("#a78bfa"))
	s8 := termenv.String("            |_|").Foreground(p.Color("#c084fc"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println(s7)
	fmt.Println(s8)
	fmt.Println()
}
