package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"projecthub/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the issue enum tags to gin's validator and makes
// validation messages use json/form field names. Safe to call more than once;
// later calls return the result of the first.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})

		if err := v.RegisterValidation("issue_status", func(fl validator.FieldLevel) bool {
			_, ok := model.ParseIssueStatus(fl.Field().String())
			return ok
		}); err != nil {
			registerErr = fmt.Errorf("register issue_status: %w", err)
			return
		}
		if err := v.RegisterValidation("issue_priority", func(fl validator.FieldLevel) bool {
			_, ok := model.ParseIssuePriority(fl.Field().String())
			return ok
		}); err != nil {
			registerErr = fmt.Errorf("register issue_priority: %w", err)
		}
	})
	return registerErr
}

// respondBindError answers 422 for rule violations and 400 for malformed input.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "issue_status", "issue_priority":
			msgs = append(msgs, fmt.Sprintf("invalid %s %q", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": strings.Join(msgs, "; ")})
}
