package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/sugarfit-crawler/internal/calendar"
	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
)

func main() {
	// Create a sample session, published the way the site does
	maxCount, current := 12, 9
	raw := session.Raw{
		Class: session.ClassInfo{
			Title:      "Morning Yoga",
			Difficulty: "Beginner",
			Category:   "Mind & Body",
		},
		Trainer: session.TrainerInfo{
			FirstName: "Jane",
			LastName:  "Doe",
			Gender:    "female",
			Position:  "Head coach",
		},
		Location:         session.StructuredLocation("Studio 1"),
		Start:            "2026-03-16T07:00:00",
		End:              "2026-03-16T08:00:00",
		Date:             "2026-03-16T00:00:00",
		MaxHeadcount:     &maxCount,
		CurrentHeadcount: &current,
	}

	row, err := session.NewRow(raw, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building row: %v\n", err)
		os.Exit(1)
	}

	// Generate .ics file
	icsContent, err := calendar.GenerateICS([]session.Row{row}, "Sugarfitness sample")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating calendar: %v\n", err)
		os.Exit(1)
	}

	// Write to file (owner read/write only for security)
	filename := "test-sugarfit-session.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
