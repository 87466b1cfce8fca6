package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/studytracker/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの本文。
// UIはcategoryで表示を切り替え、actionをそのままユーザーに案内する。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// StatusForKind はエラー種別に対応するHTTPステータスコードを返す。
// NotFound→404、Conflict→409、Validation→422、それ以外は500。
func StatusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	case model.KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WriteAPIError はエラー種別から決まるステータスコードでapiErrを書き込む。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	WriteErrorResponse(w, StatusForKind(apiErr.Kind), apiErr)
}

// WriteErrorResponse は指定したステータスコードでエラーレスポンスを書き込む。
// レート制限（429）のようにエラー種別を持たない応答はこちらを直接使う。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError は500レスポンスを書き込む。
// 原因はログにのみ残し、レスポンスには固定メッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}
