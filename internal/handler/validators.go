package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vaxtrack/reminder-api/internal/model"
)

// RegisterValidators installs the domain validators on gin's binding engine.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return model.Priority(fl.Field().String()).Rank() > 0
	})

	v.RegisterValidation("recurrence_unit", func(fl validator.FieldLevel) bool {
		switch model.RecurrenceUnit(fl.Field().String()) {
		case model.RecurrenceNone, model.RecurrenceDaily, model.RecurrenceWeekly,
			model.RecurrenceMonthly, model.RecurrenceYearly:
			return true
		}
		return false
	})
}
