package constants

// Channel contract
const (
	DefaultChannelName   = "sms_reader"
	MethodGetSmsMessages = "getSmsMessages"
	SmsErrorCode         = "SMS_ERROR"
	SmsErrorPrefix       = "Failed to read SMS: "
)

// Inbox query contract
const (
	InboxCollection = "inbox"
	InboxSortOrder  = "date DESC"
	InboxLimit      = 20

	ColumnAddress = "address"
	ColumnBody    = "body"
	ColumnDate    = "date"

	// Android Telephony.Sms.MESSAGE_TYPE_INBOX
	SmsTypeInbox = 1
	SmsTypeSent  = 2
)

// InboxProjection is the exact column list requested from the store.
var InboxProjection = []string{ColumnAddress, ColumnBody, ColumnDate}

// Default retry configuration values
const (
	DefaultRetryBackoffMs        = 1000
	DefaultMaxBackoffMs          = 60000
	DefaultMaxAttempts           = 5
	DefaultDatabaseRetryAttempts = 3
	DefaultStoreBusyTimeoutMs    = 5000
)

// Default server values
const (
	DefaultServerPort            = 8082
	DefaultGracefulShutdownSec   = 30
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
	DefaultSignatureMaxSkewSec   = 300
	ServerErrorChannelSize       = 1
	DefaultConfigPollIntervalSec = 5
	DefaultHealthCheckTimeoutSec = 2
	MaxChannelRequestBytes       = 64 * 1024
)

// Channel signing
const (
	SignatureHeader      = "X-Channel-Signature"
	TimestampHeader      = "X-Channel-Timestamp"
	SigningKeySalt       = "smsbridge-channel-signing-v1"
	SigningKeyIterations = 100000
	SigningKeySize       = 32
	MinSecretLength      = 32
)

// Privacy settings
const (
	DefaultPhoneMaskLength = 4
)
