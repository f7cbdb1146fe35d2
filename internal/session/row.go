package session

import (
	"fmt"
	"strconv"
	"time"
)

// Column names, in table order
const (
	ColClassTitle      = "Class Title"
	ColClassDifficulty = "Class Difficulty"
	ColClassCategory   = "Class Category"
	ColClassLocation   = "Class Location"
	ColScheduledDate   = "Scheduled Date"
	ColStartTime       = "Start Time"
	ColEndTime         = "End Time"
	ColLengthOfClass   = "Length of Class"
	ColHeadcount       = "Headcount"
	ColAvailableSlots  = "Available Slots"
	ColTrainerName     = "Trainer Name"
	ColTrainerGender   = "Trainer Gender"
	ColTrainerPosition = "Trainer Position"
)

// NoAvailableSlots is shown instead of "0" for a full class
const NoAvailableSlots = "NO AVAILABLE SLOTS"

// Columns returns the table header
func Columns() []string {
	return []string{
		ColClassTitle,
		ColClassDifficulty,
		ColClassCategory,
		ColClassLocation,
		ColScheduledDate,
		ColStartTime,
		ColEndTime,
		ColLengthOfClass,
		ColHeadcount,
		ColAvailableSlots,
		ColTrainerName,
		ColTrainerGender,
		ColTrainerPosition,
	}
}

// Slots is the number of places left in a class. It can be negative when the
// site overbooks.
type Slots int

// Full reports whether no place is left
func (s Slots) Full() bool {
	return s == 0
}

// String renders the value the way the table shows it
func (s Slots) String() string {
	if s == 0 {
		return NoAvailableSlots
	}
	return strconv.Itoa(int(s))
}

// Row is the flat, display-ready form of one session
type Row struct {
	ClassTitle      string `json:"class_title"`
	ClassDifficulty string `json:"class_difficulty"`
	ClassCategory   string `json:"class_category"`
	ClassLocation   string `json:"class_location"`
	ScheduledDate   string `json:"scheduled_date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	LengthOfClass   string `json:"length_of_class"`
	Headcount       string `json:"headcount"`
	AvailableSlots  string `json:"available_slots"`
	TrainerName     string `json:"trainer_name"`
	TrainerGender   string `json:"trainer_gender"`
	TrainerPosition string `json:"trainer_position"`

	// Typed forms of AvailableSlots and LengthOfClass
	Slots   Slots `json:"-"`
	Minutes int   `json:"-"`
}

// NewRow flattens a raw session. now is the fetch wall clock stamped into
// Headcount.
func NewRow(raw Raw, now time.Time) (Row, error) {
	if raw.MaxHeadcount == nil {
		return Row{}, fmt.Errorf("%w: max_headcount is missing", ErrSchemaMismatch)
	}
	if raw.CurrentHeadcount == nil {
		return Row{}, fmt.Errorf("%w: current_headcount is missing", ErrSchemaMismatch)
	}

	start, err := ParseInstant(raw.Start)
	if err != nil {
		return Row{}, fmt.Errorf("start: %w", err)
	}
	end, err := ParseInstant(raw.End)
	if err != nil {
		return Row{}, fmt.Errorf("end: %w", err)
	}
	date, err := ParseInstant(raw.Date)
	if err != nil {
		return Row{}, fmt.Errorf("date: %w", err)
	}

	maxCount, current := *raw.MaxHeadcount, *raw.CurrentHeadcount
	slots := Slots(maxCount - current)
	minutes := int(end.Sub(start).Minutes())

	return Row{
		ClassTitle:      raw.Class.Title.String(),
		ClassDifficulty: raw.Class.Difficulty.String(),
		ClassCategory:   raw.Class.Category.String(),
		ClassLocation:   raw.Location.Name(),
		ScheduledDate:   date.Format(DateLayout),
		StartTime:       start.Format(ClockLayout),
		EndTime:         end.Format(ClockLayout),
		LengthOfClass:   fmt.Sprintf("%d mins", minutes),
		Headcount:       fmt.Sprintf("%d/%d@%s", maxCount, current, now.Format(StampLayout)),
		AvailableSlots:  slots.String(),
		TrainerName:     fmt.Sprintf("%s %s", raw.Trainer.LastName, raw.Trainer.FirstName),
		TrainerGender:   raw.Trainer.Gender.String(),
		TrainerPosition: raw.Trainer.Position.String(),
		Slots:           slots,
		Minutes:         minutes,
	}, nil
}

// Values returns the row's cells in Columns order
func (r Row) Values() []string {
	return []string{
		r.ClassTitle,
		r.ClassDifficulty,
		r.ClassCategory,
		r.ClassLocation,
		r.ScheduledDate,
		r.StartTime,
		r.EndTime,
		r.LengthOfClass,
		r.Headcount,
		r.AvailableSlots,
		r.TrainerName,
		r.TrainerGender,
		r.TrainerPosition,
	}
}
