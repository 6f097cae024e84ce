package flow

import (
	"strings"

	"medassist/api/internal/flow/types"
	"medassist/api/internal/util"
)

// ValidateSymptoms is the text-flow input check. Optional fields pass through untouched.
func ValidateSymptoms(form types.SymptomForm) (types.PredictPayload, error) {
	if strings.TrimSpace(form.Description) == "" {
		return types.PredictPayload{}, ErrEmptyDescription
	}
	return form.Payload(), nil
}

func ValidateImage(img *types.Image) (types.Image, error) {
	if img == nil {
		return types.Image{}, ErrNoFileSelected
	}
	return *img, nil
}

// PreviewDataURL builds the inline preview shown next to the file input.
func PreviewDataURL(img types.Image) string {
	return util.MakeDataURL(img.ContentType(), img.Data)
}
