package providers

import (
	"github.com/gookit/validate"

	"signalkit/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	v.StopOnError = false
	if !v.Validate() {
		return v.Errors
	}
	return nil
}
