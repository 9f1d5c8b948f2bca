package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the submit payload before it reaches the queue.
func (r SubmitRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				if fieldErr.Tag() == "required" {
					return errors.New("rss_url is required")
				}
			}
			return errors.New("rss_url must be a valid URL")
		}
		return err
	}
	return nil
}
