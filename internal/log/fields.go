package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMessageID   = "message_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldPhone       = "phone"
	FieldAccountID   = "account_id"
	FieldIntent      = "intent"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldTxID        = "transaction_id"
	FieldTxType      = "transaction_type"
	FieldReplyLen    = "reply_len"
	FieldMonth       = "month"
	FieldSheetsRef   = "sheets_ref"
	FieldQueue       = "queue"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentDispatch  = "dispatch"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentVerify    = "verify"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
)

// MaskPhone hides all but the last four digits of a phone number so logs
// never carry a full personal number. "+15555550123" becomes "***0123".
func MaskPhone(phone string) string {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits <= 4 {
		return "***"
	}
	keep := 4
	start := len(phone)
	for i := len(phone) - 1; i >= 0; i-- {
		if phone[i] >= '0' && phone[i] <= '9' {
			keep--
			if keep == 0 {
				start = i
				break
			}
		}
	}
	return "***" + phone[start:]
}

// LogFields provides a builder for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds the component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds the request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithClientIP adds the client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithPhone adds a masked phone field
func (f LogFields) WithPhone(phone string) LogFields {
	f[FieldPhone] = MaskPhone(phone)
	return f
}

// WithTransaction adds transaction fields
func (f LogFields) WithTransaction(txType string, amountCents int64, category string) LogFields {
	f[FieldTxType] = txType
	f[FieldAmountCents] = amountCents
	f[FieldCategory] = category
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
