package model

import (
	"strconv"
)

// Cell codecs render values exactly as they appear in the persisted CSV
// artifacts. Fingerprinting depends on this rendering being stable, so all
// table conversions in this package go through these helpers.

func floatCell(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatPtrCell(v *float64) string {
	if v == nil {
		return ""
	}
	return floatCell(*v)
}

func intPtrCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func stringPtrCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func parseFloatCell(cell string) (float64, error) {
	if cell == "" {
		return 0, nil
	}
	return strconv.ParseFloat(cell, 64)
}

func parseFloatPtrCell(cell string) (*float64, error) {
	if cell == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseIntPtrCell(cell string) (*int, error) {
	if cell == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(cell)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseStringPtrCell(cell string) *string {
	if cell == "" {
		return nil
	}
	return &cell
}
