package api

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/symptom-triage-server/internal/domain"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

var customValidators = map[string]validator.Func{
	"duration": func(fl validator.FieldLevel) bool {
		return domain.Duration(fl.Field().String()).IsValid()
	},
	"severity": func(fl validator.FieldLevel) bool {
		return domain.Severity(fl.Field().String()).IsValid()
	},
	"urgency": func(fl validator.FieldLevel) bool {
		return domain.Urgency(fl.Field().String()).IsValid()
	},
}

// registerValidators adds the enum tags to gin's validator and reports
// fields by their JSON names.
func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		for tag, fn := range customValidators {
			if err := v.RegisterValidation(tag, fn); err != nil {
				validatorsErr = err
				return
			}
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validatorsErr
}
