// Package builder turns ERP records into WMS request payloads. Every function
// here is pure: no I/O, output depends only on the input records.
package builder

import (
	"strings"

	"github.com/xelth-com/ongoingwms/internal/models"
)

// blank is what the WMS gets instead of an empty string for required text.
const blank = " "

// provider yields a candidate value; ok is false when the next provider should be tried.
type provider func() (value string, ok bool)

func value(s string) provider {
	return func() (string, bool) {
		return s, strings.TrimSpace(s) != ""
	}
}

func prefixed(prefix, s string) provider {
	return func() (string, bool) {
		if strings.TrimSpace(s) == "" {
			return "", false
		}
		return prefix + s, true
	}
}

func partnerField(p *models.ResPartner, field func(*models.ResPartner) string) provider {
	return func() (string, bool) {
		if p == nil {
			return "", false
		}
		return value(field(p))()
	}
}

func parentName(p *models.ResPartner) provider {
	return func() (string, bool) {
		if p == nil || p.Parent == nil {
			return "", false
		}
		return value(p.Parent.Name)()
	}
}

func firstOf(providers ...provider) (string, bool) {
	for _, p := range providers {
		if v, ok := p(); ok {
			return v, true
		}
	}
	return "", false
}

// orDefault evaluates providers in order and falls back to def.
func orDefault(def string, providers ...provider) string {
	if v, ok := firstOf(providers...); ok {
		return v
	}
	return def
}

func name(p *models.ResPartner) string    { return p.Name }
func street(p *models.ResPartner) string  { return p.Street }
func street2(p *models.ResPartner) string { return p.Street2 }
func zip(p *models.ResPartner) string     { return p.Zip }
func city(p *models.ResPartner) string    { return p.City }
func country(p *models.ResPartner) string { return p.CountryCode }
