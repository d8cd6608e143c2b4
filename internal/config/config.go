package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used for vCard imports.
var UserAgent = "Go-Partners/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Partners"
	AppID             = "com.github.tartampluch.go-partners"
	KeyringService    = "com.github.tartampluch.go-partners"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	DBFileName        = "partners.db"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1

	// WriteQueueSize bounds the number of pending snapshot writes.
	WriteQueueSize = 16
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagStorage      = "storage"
	FlagDBPath       = "db"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescStorage  = "Backing store for partner data: preferences, keyring or sqlite"
	FlagDescDBPath   = "SQLite database path (sqlite storage only, defaults to the user config dir)"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Storage
// -----------------------------------------------------------------------------

const (
	// KeyPartners is the single key holding the whole partner collection.
	KeyPartners = "partners"
	// KeyTheme holds the user's explicit light/dark choice.
	KeyTheme = "userTheme"

	ThemeDark  = "dark"
	ThemeLight = "light"

	BackendPreferences = "preferences"
	BackendKeyring     = "keyring"
	BackendSQLite      = "sqlite"
	DefaultBackend     = BackendPreferences

	SQLiteDriver = "sqlite3"
	SyncNormal   = "NORMAL"

	PersistTimeout = 5 * time.Second
	LoadTimeout    = 5 * time.Second
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	PartnersWinWidth  = 480
	PartnersWinHeight = 640
	FormWinWidth      = 520
	FormWinHeight     = 720
	IdeasWinWidth     = 420
	IdeasWinHeight    = 560

	// Preference Keys
	PrefLanguage        = "language"
	PrefServerPort      = "server_port"
	PrefReminderEnabled = "reminder_enabled"
	PrefReminderValue   = "reminder_value"
	PrefReminderUnit    = "reminder_unit"
	PrefReminderDir     = "reminder_direction"
	PrefImportURL       = "import_url"
	PrefImportUser      = "import_user"
	PrefImportMode      = "import_mode"
	PrefImportPath      = "import_path"
	PrefLastRun         = "last_run_version"

	DateFormatDisplay = "2006-01-02"
	PhoneMaxDigits    = 10
	PhoneSeparator    = "-"
	ListPlaceholder   = "Partner"
	PlaceholderURL    = "https://..."
	PlaceholderDate   = "YYYY-MM-DD"
	ExtVCF            = ".vcf"
	ExtVCard          = ".vcard"

	SettingsWinWidth    = 560
	LayoutColumnsDouble = 2
	LayoutColumnsTriple = 3
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinPartners      = "win_partners_title"
	TKeyWinAddPartner    = "win_add_partner"
	TKeyWinEditPartner   = "win_edit_partner"
	TKeyWinIdeasDefault  = "win_ideas_default"
	TKeyWinIdeasOwner    = "win_ideas_owner" // Requires Name
	TKeyWinMyIdeas       = "win_my_ideas"
	TKeyBtnAdd           = "btn_add"
	TKeyBtnSave          = "btn_save"
	TKeyBtnDelete        = "btn_delete"
	TKeyBtnCancel        = "btn_cancel"
	TKeyBtnIdeas         = "btn_ideas"
	TKeyBtnPair          = "btn_pair"
	TKeyBtnAddAnniv      = "btn_add_anniversary"
	TKeyBtnAddPref       = "btn_add_preference"
	TKeyBtnThemeDark     = "btn_theme_dark"
	TKeyBtnThemeLight    = "btn_theme_light"
	TKeyLblName          = "lbl_partner_name"
	TKeyLblFirstName     = "lbl_first_name"
	TKeyLblLastName      = "lbl_last_name"
	TKeyLblNickName      = "lbl_nick_name"
	TKeyLblIntimateName  = "lbl_intimate_name"
	TKeyLblPreferred     = "lbl_preferred_name"
	TKeyLblAnniversaries = "lbl_anniversaries"
	TKeyLblPreferences   = "lbl_preferences"
	TKeyLblContact       = "lbl_contact"
	TKeyLblEmail         = "lbl_email"
	TKeyLblPhone         = "lbl_phone"
	TKeyLblAddress       = "lbl_address"
	TKeyLblNotes         = "lbl_notes"
	TKeyLblDate          = "lbl_date"
	TKeyLblLikes         = "lbl_likes"
	TKeyLblHates         = "lbl_hates"
	TKeyLblCustomAct     = "lbl_custom_activity"
	TKeyLblRemoteID      = "lbl_remote_id"
	TKeyLblNextNone      = "lbl_next_none"
	TKeyLblNext          = "lbl_next" // Requires Name, Date
	TKeyEvtSummary       = "event_summary"
	TKeyNoticeNotFound   = "notice_not_found"
	TKeyNoticeMismatch   = "notice_pairing_mismatch"
	TKeyNoticePaired     = "notice_pairing_ok"
	TKeyNoticeNoSel      = "notice_no_selection"
	TKeyNoticeSaveWarn   = "notice_save_warning"
	TKeyNotifFeedFail    = "notif_feed_fail"
	TKeyNoticeInvalid    = "notice_invalid_input"
	TKeyTitleNotice      = "title_notice"
	TKeyNoticeImported   = "notice_imported" // Requires Count
	TKeyNoticeImportFail = "notice_import_failed"
	TKeyNoticeEmptyAct   = "notice_empty_activity"
	TKeyConfirmDelete    = "confirm_delete" // Requires Name
	TKeyBtnEdit          = "btn_edit"
	TKeyBtnRemove        = "btn_remove"
	TKeyBtnImport        = "btn_import"
	TKeyBtnSettings      = "btn_settings"
	TKeyBtnBrowse        = "btn_browse"
	TKeyWinSettings      = "win_settings"
	TKeyLblLike          = "lbl_like"
	TKeyLblLanguage      = "lbl_language"
	TKeyHelpLanguage     = "help_language"
	TKeyLblPort          = "lbl_port"
	TKeyHelpPort         = "help_port"
	TKeyLblGeneral       = "lbl_general"
	TKeyLblEnableRem     = "lbl_enable_reminder"
	TKeyLblNotif         = "lbl_notifications"
	TKeyLblStartDay      = "lbl_start_of_day"
	TKeyUnitDays         = "unit_days"
	TKeyUnitHours        = "unit_hours"
	TKeyUnitMinutes      = "unit_minutes"
	TKeyDirBefore        = "dir_before"
	TKeyDirAfter         = "dir_after"
	TKeyLblSource        = "lbl_import_source"
	TKeyModeWeb          = "mode_web"
	TKeyModeLocal        = "mode_local"
	TKeyLblURL           = "lbl_url"
	TKeyHelpURL          = "help_url"
	TKeyLblUser          = "lbl_username"
	TKeyLblPass          = "lbl_password"
	TKeyLblFooter        = "lbl_footer" // Requires Version
	TKeyErrPortReq       = "err_port_required"
	TKeyErrPortNum       = "err_port_numeric"
	TKeyErrPortRange     = "err_port_range"
	TKeyErrDate          = "err_date"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb        = "web"
	SourceModeLocal      = "local"
	DefaultPort          = "18081"
	DefaultLanguage      = "en"
	DefaultReminderValue = 1
	UIDSalt              = "go-partners-v1-" // Salt for deterministic event UIDs
	CustomCategory       = "custom"
	CustomIDPrefix       = "c"
	NoneLabel            = "none"
	ImportBirthdayName   = "Birthday"
	ImportWeddingName    = "Married"
)

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISOTime           = "T"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Partners//Engine//EN"
	ICalCalName   = "Anniversaries"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gopartners"

	// iCal Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardVersion = "4.0"

	DefaultICalRefresh = 1 * time.Hour

	// StubVCalendar is the minimal valid iCalendar object used when no anniversaries exist.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// DateFormatISO is the persisted anniversary date layout.
	DateFormatISO = "2006-01-02"

	// Layouts accepted when reading vCard BDAY/ANNIVERSARY values
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	DefaultLeapYear     = 2000 // Leap year fallback for dates like --02-29

	MinPort = 1
	MaxPort = 65535

	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB of vCards is plenty
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteCalendar       = "/anniversaries.ics"
	RouteContacts       = "/partners.vcf"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextVCard       = "text/vcard; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrPartnerNotFound   = "partner not found"
	ErrInvalidPreferred  = "invalid preferred name field"
	ErrInvalidAnniv      = "anniversary date is required"
	ErrPersist           = "failed to persist partners"
	ErrDecode            = "failed to decode persisted partners"
	ErrEncode            = "failed to encode partners"
	ErrPairingMismatch   = "remote identifier does not match partner"
	ErrNoSelection       = "no partner selected"
	ErrEmptyActivity     = "activity name is empty"
	ErrWriterClosed      = "write queue is closed"
	ErrQueueFull         = "write queue is full"
	ErrWriterStuck       = "write queue did not drain in time"
	ErrUnknownBackend    = "configuration error: unsupported storage backend"
	ErrOpenDB            = "failed to open database"
	ErrPingDB            = "failed to ping database"
	ErrInitSchema        = "failed to initialize schema"
	ErrThemePersist      = "failed to persist theme choice"
	ErrLocalPathEmpty    = "configuration error: local path is empty"
	ErrWebURLEmpty       = "configuration error: web URL is empty"
	ErrFetcherMissing    = "internal error: network fetcher is not initialized"
	ErrModeUnsupport     = "configuration error: unsupported source mode"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrPortRequired      = "server port is required"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrVCardParse        = "failed to parse vCard stream"
	ErrVCardEncode       = "failed to encode vCard data"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrDateParse         = "unable to parse date"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrConfigDir         = "could not determine user config dir"
	ErrCreateDir         = "could not create app directory"
	ErrAppFailed         = "application failed unexpectedly"
	ErrWriteResp         = "failed to write response body"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrLocNotInit        = "localizer not initialized"
	ErrFeedPublish       = "failed to publish feeds"
	ErrStorageClose      = "failed to close storage"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary   = "%s: %s" // Anniversary, Partner
	FallbackIdeas     = "Partner's Ideas"
	FallbackIdeasFor  = "%s's Ideas"
	FallbackName      = "Unknown"
	FallbackNext      = "%s: %s"
	FallbackSaveWarn  = "Saved for this session, but it could not be written to storage."
	FallbackImported  = "%d partners imported"
	FallbackFooter    = "Go Partners %s"
	TitleStartupError = "Startup Error"
	TitleFeedError    = "Feed Error"

	MsgPortBusy       = "Port %s is busy or unavailable."
	MsgAppStarting    = "Starting application"
	MsgStorageOpen    = "Storage backend opened"
	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down UI"
	MsgLoadEmpty      = "No stored partners, starting empty"
	MsgLoadFailed     = "Stored partners unavailable, starting empty"
	MsgLoaded         = "Partners loaded"
	MsgCreated        = "Partner created"
	MsgUpdated        = "Partner updated"
	MsgDeleted        = "Partner deleted"
	MsgDeleteMissing  = "Delete requested for unknown partner"
	MsgPersistFailed  = "Partner persistence failed, keeping in-memory state"
	MsgWriteLate      = "Timed out write completed late"
	MsgWriterStop     = "Write queue drained"
	MsgThemeLoaded    = "Theme loaded"
	MsgThemeToggled   = "Theme toggled"
	MsgPairingOK      = "Pairing confirmed"
	MsgPairingFail    = "Pairing mismatch"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgImported       = "vCard import finished"
	MsgFeedGenerated  = "Anniversary feed generated"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Feed cache updated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgActivityAdded  = "Custom activity added"
	MsgAnnivToday     = "Anniversary found today"
	MsgOpenPartners   = "Opening partners window"
	MsgOpenForm       = "Opening partner form"
	MsgOpenIdeas      = "Opening ideas window"
	MsgOpenSettings   = "Opening settings window"
	MsgSettingsSaved  = "Preferences saved"
	MsgKeyringSave    = "Failed to save credentials to keyring"
	MsgReminderOff    = "Reminders disabled via settings (value is empty)"
	MsgImportStart    = "Importing partners"
	MsgImportDraft    = "Imported partner rejected"
	MsgFeedsPublished = "Feeds published"
	MsgWindowFocus    = "Window already open, requesting focus"
)

// -----------------------------------------------------------------------------
// Reminder Units & Directions
// -----------------------------------------------------------------------------

const (
	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyBackend   = "backend"
	LogKeyUser      = "user"
	LogKeyID        = "partner_id"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDate      = "date"
	LogKeyRoute     = "route"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyTheme     = "theme"
	LogKeyDuration  = "duration_ms"
	LogKeyStats     = "stats"
	LogKeyTotal     = "total_cards"
	LogKeyEvents    = "events"
	LogKeyToday     = "anniversaries_today"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI         = "ui"
	CompStore      = "partner_store"
	CompStorage    = "storage"
	CompWriter     = "write_queue"
	CompEngine     = "engine"
	CompImport     = "import"
	CompServer     = "server"
	CompFetcher    = "fetcher"
	CompMain       = "main"
	CompI18n       = "i18n"
	CompAppearance = "appearance"
	CompSession    = "session"
	CompCatalog    = "catalog"
	CompUISet      = "ui_settings"
)
