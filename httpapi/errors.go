package httpapi

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

const genericServerMessage = "An unexpected server error occurred"

var ErrMalformedBody = goerrors.New("request body could not be parsed", goerrors.CategoryBadInput).
	WithTextCode("MALFORMED_BODY").
	WithCode(goerrors.CodeBadRequest)

var ErrMalformedQuery = goerrors.New("query string could not be parsed", goerrors.CategoryBadInput).
	WithTextCode("MALFORMED_QUERY").
	WithCode(goerrors.CodeBadRequest)

var ErrMissingUser = goerrors.New("no authenticated user on request", goerrors.CategoryInternal).
	WithTextCode("MISSING_USER").
	WithCode(goerrors.CodeInternal)

// ToRichError maps any error raised while serving a request into a
// rich error with an HTTP status code.
func ToRichError(err error) *goerrors.Error {
	var fiberErr *fiber.Error
	if goerrors.As(err, &fiberErr) {
		return goerrors.New(fiberErr.Message, goerrors.HTTPStatusToCategory(fiberErr.Code)).
			WithCode(fiberErr.Code).
			WithTextCode(goerrors.HTTPStatusToTextCode(fiberErr.Code))
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, genericServerMessage).
			WithCode(goerrors.CodeInternal).
			WithTextCode("INTERNAL_ERROR")
	}

	if richErr.Code == 0 {
		richErr = richErr.Clone()
		richErr.Code = statusFromCategory(richErr.Category)
	}

	return richErr
}

func statusFromCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryOperation:
		return http.StatusUnprocessableEntity
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders every handler error as a JSON error envelope.
// Server side failures are logged and answered with a generic message.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		richErr := ToRichError(err)

		if richErr.Code >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"error", richErr.Error(),
				"metadata", print.MaybePrettyJSON(richErr.Metadata),
			)
		} else {
			logger.Debug("request rejected",
				"method", c.Method(),
				"path", c.Path(),
				"category", richErr.Category,
				"text_code", richErr.TextCode,
			)
		}

		if richErr.Code == http.StatusUnauthorized {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		}

		return c.Status(richErr.Code).JSON(publicError(c, richErr).ToErrorResponse(false, nil))
	}
}

// publicError strips what clients must not see
func publicError(c *fiber.Ctx, richErr *goerrors.Error) *goerrors.Error {
	out := richErr.Clone()
	out.Source = nil
	out.Location = nil
	out.StackTrace = nil
	out.Metadata = nil

	if rid, ok := c.Locals(requestIDKey).(string); ok {
		out.RequestID = rid
	}

	if out.Code >= http.StatusInternalServerError {
		out.Message = genericServerMessage
		out.ValidationErrors = nil
	}

	return out
}
