package ui

import (
	"encoding/base64"
	"fmt"

	"fyne.io/fyne/v2"
)

// logoPNG is the embedded launcher logo (placeholder pixel; the shipped
// build replaces it with the Elantharil artwork)
const logoPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// LoadLogoResource returns the embedded logo as a Fyne resource
func LoadLogoResource() (fyne.Resource, error) {
	data, err := base64.StdEncoding.DecodeString(logoPNG)
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded logo: %w", err)
	}

	return fyne.NewStaticResource("ela.png", data), nil
}
