package types

import (
	"math"
	"strconv"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender returns nil for anything outside the enumeration.
func ParseGender(s string) *Gender {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case GenderMale, GenderFemale, GenderOther:
		return &g
	default:
		return nil
	}
}

// SymptomForm: поля формы предсказания. Nil означает «не указано».
type SymptomForm struct {
	Description string
	Name        string
	Age         *int
	Gender      *Gender
	Weight      *float64
	Height      *float64
	Notes       string
}

// ParseAge: целое ≥ 0, иначе nil.
func ParseAge(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// ParseMeasure: конечное число ≥ 0, иначе nil (вес/рост).
func ParseMeasure(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// PredictPayload is the JSON body of the prediction endpoint. Absent fields are sent as null.
type PredictPayload struct {
	Text   string   `json:"text"`
	Age    *int     `json:"age"`
	Gender *Gender  `json:"gender"`
	Weight *float64 `json:"weight"`
	Height *float64 `json:"height"`
}

func (f SymptomForm) Payload() PredictPayload {
	return PredictPayload{
		Text:   f.Description,
		Age:    f.Age,
		Gender: f.Gender,
		Weight: f.Weight,
		Height: f.Height,
	}
}
