package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrNoPermission     ErrCode = "NO_PERMISSION"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Records ───────────────────────────────────────────────────────
	ErrRecordNotFound    ErrCode = "RECORD_NOT_FOUND"
	ErrRecordUnavailable ErrCode = "RECORD_UNAVAILABLE"
	ErrRecordExisted     ErrCode = "RECORD_EXISTED"
	ErrRecordInUse       ErrCode = "RECORD_IN_USE"

	// ─── Exam generation ───────────────────────────────────────────────
	ErrInvalidScalePercent   ErrCode = "INVALID_SCALE_PERCENT"
	ErrInsufficientQuestions ErrCode = "INSUFFICIENT_QUESTIONS"
	ErrInvalidFillInFormat   ErrCode = "INVALID_FILL_IN_FORMAT"
	ErrTooManyDistractors    ErrCode = "TOO_MANY_DISTRACTORS"
	ErrInvalidLabelScheme    ErrCode = "INVALID_LABEL_SCHEME"
	ErrGenerationLimit       ErrCode = "GENERATION_LIMIT_EXCEEDED"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrUploadFailed    ErrCode = "UPLOAD_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email hoặc mật khẩu không đúng."
	case ErrSessionInvalidated:
		return "Phiên đăng nhập đã kết thúc. Vui lòng đăng nhập lại."
	case ErrTokenRequired:
		return "Yêu cầu token xác thực."
	case ErrTokenInvalid:
		return "Token xác thực không hợp lệ."
	case ErrTokenExpired:
		return "Token xác thực đã hết hạn."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrPermissionDenied:
		return "Bạn không có quyền thực hiện thao tác này."
	case ErrNoPermission:
		return "Bạn không phải chủ sở hữu của bản ghi này."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Dữ liệu không hợp lệ. Vui lòng kiểm tra lại."
	case ErrInvalidID:
		return "Định dạng ID không hợp lệ."
	case ErrInvalidPayload:
		return "Nội dung yêu cầu không hợp lệ."

	// ─── Records ───────────────────────────────────────────────────────
	case ErrRecordNotFound:
		return "Không tìm thấy bản ghi."
	case ErrRecordUnavailable:
		return "Bản ghi không khả dụng hoặc bạn không có quyền truy cập."
	case ErrRecordExisted:
		return "Bản ghi đã tồn tại."
	case ErrRecordInUse:
		return "Bản ghi đang được dữ liệu khác sử dụng nên không thể xóa."

	// ─── Exam generation ───────────────────────────────────────────────
	case ErrInvalidScalePercent:
		return "Tổng tỉ lệ phần trăm của các chương phải bằng 100."
	case ErrInsufficientQuestions:
		return "Không đủ câu hỏi trong chương để tạo đề thi."
	case ErrInvalidFillInFormat:
		return "Định dạng câu hỏi điền khuyết không hợp lệ."
	case ErrTooManyDistractors:
		return "Số lượng đáp án nhiễu yêu cầu vượt quá giới hạn."
	case ErrInvalidLabelScheme:
		return "Kiểu nhãn không hợp lệ."
	case ErrGenerationLimit:
		return "Yêu cầu tạo đề vượt quá giới hạn cho phép."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Yêu cầu tải lên tệp."
	case ErrUnsupportedFile:
		return "Định dạng tệp không được hỗ trợ."
	case ErrFileTooLarge:
		return "Kích thước tệp vượt quá giới hạn."
	case ErrUploadFailed:
		return "Tải lên hình ảnh thất bại."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Quá nhiều yêu cầu. Vui lòng thử lại sau."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Đã xảy ra lỗi hệ thống."
	default:
		return "Đã xảy ra lỗi không xác định."
	}
}
