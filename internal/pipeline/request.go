// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"github.com/go-playground/validator/v10"

	"github.com/ifctrack/ifctrack/internal/differ"
	"github.com/ifctrack/ifctrack/internal/ifc"
)

// Defaults for a diff run.
const (
	DefaultOld      = "HA_oldVersion.ifc"
	DefaultNew      = "HA_newVersion.ifc"
	DefaultCategory = "IfcElement"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("ifcclass", func(fl validator.FieldLevel) bool {
		return ifc.Known(fl.Field().String())
	})
	_ = validate.RegisterValidation("extractor", func(fl validator.FieldLevel) bool {
		_, err := differ.ParseExtractor(fl.Field().String())
		return err == nil
	})
}

// Request describes one comparison.
type Request struct {
	Old       string `validate:"required"`
	New       string `validate:"required"`
	OutputDir string `validate:"required"`
	Category  string `validate:"required,ifcclass"`
	// Compare selects the tracked value, see differ.ParseExtractor.
	Compare string   `validate:"extractor"`
	// TopN of zero takes report.DefaultTop.
	TopN    int      `validate:"gte=0"`
	Formats []string `validate:"dive,oneof=csv xlsx"`
	// Cumulative computes the top table over every recorded run.
	Cumulative bool
}

// Validate checks the request.
func (r *Request) Validate() error {
	return validate.Struct(r)
}

// EnsureDefaults fills unset fields.
func (r *Request) EnsureDefaults() {
	if r.Old == "" {
		r.Old = DefaultOld
	}
	if r.New == "" {
		r.New = DefaultNew
	}
	if r.OutputDir == "" {
		r.OutputDir = "."
	}
	if r.Category == "" {
		r.Category = DefaultCategory
	}
	if len(r.Formats) == 0 {
		r.Formats = []string{"csv"}
	}
}
