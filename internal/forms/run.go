package forms

import "net/url"

// Choice is one entry of a select field.
type Choice struct {
	Value string
	Label string
}

// Option choice sets. The first entry of each is its default.
var (
	Option1Choices = []Choice{{"a", "Option A"}, {"b", "Option B"}, {"c", "Option C"}}
	Option2Choices = []Choice{{"a", "Option A"}, {"b", "Option B"}, {"c", "Option C"}}
	Option3Choices = []Choice{{"a", "Option A"}, {"b", "Option B"}, {"c", "Option C"}}
)

// RunForm submits a new run.
type RunForm struct {
	Sequence string
	Option1  string
	Option2  string
	Option3  string
	Errors   Errors
}

// NewRunForm returns an empty form with every option at its default.
func NewRunForm() *RunForm {
	return &RunForm{
		Option1: Option1Choices[0].Value,
		Option2: Option2Choices[0].Value,
		Option3: Option3Choices[0].Value,
		Errors:  Errors{},
	}
}

func ParseRun(v url.Values) *RunForm {
	f := NewRunForm()
	f.Sequence = v.Get("sequence")
	if o := v.Get("option1"); o != "" {
		f.Option1 = o
	}
	if o := v.Get("option2"); o != "" {
		f.Option2 = o
	}
	if o := v.Get("option3"); o != "" {
		f.Option3 = o
	}
	return f
}

// Validate requires a non-blank sequence and options from their choice sets.
// The sequence is kept exactly as submitted.
func (f *RunForm) Validate() bool {
	required(f.Errors, "sequence", f.Sequence)
	choice(f.Errors, "option1", f.Option1, Option1Choices)
	choice(f.Errors, "option2", f.Option2, Option2Choices)
	choice(f.Errors, "option3", f.Option3, Option3Choices)
	return f.Errors.Valid()
}

func choice(errs Errors, field, value string, choices []Choice) bool {
	for _, c := range choices {
		if c.Value == value {
			return true
		}
	}
	errs.Add(field, msgInvalidChoice)
	return false
}
