package handlers

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	txTypePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,31}$`)
	registerOnce  sync.Once
)

// validTxType accepts any short identifier. Unknown kinds are stored as given.
func validTxType(fl validator.FieldLevel) bool {
	return txTypePattern.MatchString(fl.Field().String())
}

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("txtype", validTxType)
		}
	})
}
