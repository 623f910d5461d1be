package components

import "fmt"

// FieldDescriptor describes a component field for tabular reports.
type FieldDescriptor struct {
	ID     string // Unique identifier
	Label  string // Column header
	Format string // Printf format (e.g., "%.2f")
}

// SubjectFieldDescriptors returns the report columns for one subject, in
// display order.
func SubjectFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "name", Label: "Subject", Format: "%s"},
		{ID: "week", Label: "Week", Format: "%d"},
		{ID: "weight", Label: "Weight", Format: "%.1f"},
		{ID: "fat", Label: "Fat %", Format: "%.1f"},
		{ID: "bmi", Label: "BMI", Format: "%.1f"},
		{ID: "in_band", Label: "In band", Format: "%t"},
		{ID: "intake", Label: "Intake", Format: "%.0f"},
		{ID: "reused", Label: "Reused", Format: "%d"},
		{ID: "stalled", Label: "Stalled", Format: "%d"},
	}
}

// FieldValue returns the formatted value of the field with the given id.
func FieldValue(id string, ident *Identity, comp *Composition, prog *Progress) string {
	var v any
	switch id {
	case "name":
		v = ident.Name
	case "week":
		v = prog.Week
	case "weight":
		v = comp.WeightKg
	case "fat":
		v = comp.FatPercent
	case "bmi":
		v = comp.BMI
	case "in_band":
		v = comp.InFatBand
	case "intake":
		v = prog.Intake
	case "reused":
		v = prog.ReusedWeeks
	case "stalled":
		v = prog.StalledWeeks
	default:
		return ""
	}
	for _, fd := range SubjectFieldDescriptors() {
		if fd.ID == id {
			return fmt.Sprintf(fd.Format, v)
		}
	}
	return fmt.Sprint(v)
}
