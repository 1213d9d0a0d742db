// Package handlers общие помощники HTTP слоя: разбор запроса и единый формат ответов.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
)

const msgInternalError = "внутренняя ошибка сервера"

var (
	// ErrEmptyBody возвращается, когда тело запроса отсутствует
	ErrEmptyBody = errors.New("request body is empty")

	// ErrInvalidPathParam возвращается при некорректном параметре пути
	ErrInvalidPathParam = errors.New("invalid path parameter")
)

var (
	validate     = validator.New(validator.WithRequiredStructEnabled())
	queryDecoder = newQueryDecoder()
)

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, func(s string) reflect.Value {
		return parseDateValue(s)
	})
	return d
}

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeJSON декодирует тело запроса и валидирует его по тегам validate
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}

	return validate.Struct(dst)
}

// DecodeQuery заполняет dst из query параметров (теги schema) и валидирует его
// Даты в query принимаются в формате YYYY-MM-DD
func DecodeQuery(r *http.Request, dst interface{}) error {
	if err := queryDecoder.Decode(dst, r.URL.Query()); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// PathInt64 читает положительный int64 параметр пути
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidPathParam, name, raw)
	}
	return id, nil
}

// RespondJSON пишет JSON ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError пишет ошибку в формате {"error": "..."}
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

func RespondUnprocessable(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnprocessableEntity, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}
