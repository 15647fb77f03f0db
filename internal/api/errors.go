package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

// fieldError описывает одну ошибку схемы запроса (ответ 422).
type fieldError struct {
	Loc  string `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

type schemaErrorResponse struct {
	Detail []fieldError `json:"detail"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// schemaError — запрос не соответствует схеме: нет обязательных полей, неверный тип
// или нарушены границы из тегов validate (пустые списки, price/qty <= 0).
type schemaError struct {
	fields []fieldError
}

func (e *schemaError) Error() string {
	if len(e.fields) == 0 {
		return "invalid request"
	}
	return e.fields[0].Loc + ": " + e.fields[0].Msg
}

func newSchemaError(loc, msg, typ string) *schemaError {
	return &schemaError{fields: []fieldError{{Loc: loc, Msg: msg, Type: typ}}}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody читает JSON-тело и проверяет его по тегам validate.
func decodeBody(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return newSchemaError("body", "field required", "missing")
		case errors.As(err, &typeErr):
			return newSchemaError("body."+typeErr.Field, "invalid type, expected "+typeErr.Type.String(), "type_error")
		default:
			return newSchemaError("body", "invalid JSON body", "json_invalid")
		}
	}

	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Loc: fieldLoc(fe.Namespace()), Msg: fieldMsg(fe), Type: fieldType(fe)})
		}
		return &schemaError{fields: fields}
	}
	return nil
}

// fieldLoc заменяет имя корневой структуры на "body": createOrderRequest.items[0].qty -> body.items[0].qty.
func fieldLoc(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return "body" + namespace[i:]
	}
	return "body"
}

func fieldMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min":
		if fe.Kind() == reflect.String {
			return "ensure this value has at least " + fe.Param() + " characters"
		}
		return "ensure this value has at least " + fe.Param() + " items"
	case "gt":
		return "ensure this value is greater than " + fe.Param()
	case "gte":
		return "ensure this value is greater than or equal to " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

func fieldType(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing"
	case "min":
		return "too_short"
	case "gt":
		return "greater_than"
	case "gte":
		return "greater_than_equal"
	default:
		return fe.Tag()
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError переводит ошибку в HTTP-ответ:
// схема -> 422, валидация и ссылочная целостность -> 400, остальное -> 500 с fallback-сообщением.
func writeError(w http.ResponseWriter, logger *log.Entry, err error, fallback string) {
	var schemaErr *schemaError
	switch {
	case errors.As(err, &schemaErr):
		writeJSON(w, http.StatusUnprocessableEntity, schemaErrorResponse{Detail: schemaErr.fields})
	case domain.IsValidation(err), domain.IsReferential(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
	default:
		logger.WithError(err).Error(fallback)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: fallback})
	}
}
