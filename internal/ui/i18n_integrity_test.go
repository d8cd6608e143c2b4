package ui_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-partners/internal/config"
)

var translationKeys = []string{
		config.TKeyWinPartners,
		config.TKeyWinAddPartner,
		config.TKeyWinEditPartner,
		config.TKeyWinIdeasDefault,
		config.TKeyWinIdeasOwner,
		config.TKeyWinMyIdeas,
		config.TKeyBtnAdd,
		config.TKeyBtnSave,
		config.TKeyBtnDelete,
		config.TKeyBtnCancel,
		config.TKeyBtnIdeas,
		config.TKeyBtnPair,
		config.TKeyBtnAddAnniv,
		config.TKeyBtnAddPref,
		config.TKeyBtnThemeDark,
		config.TKeyBtnThemeLight,
		config.TKeyLblName,
		config.TKeyLblFirstName,
		config.TKeyLblLastName,
		config.TKeyLblNickName,
		config.TKeyLblIntimateName,
		config.TKeyLblPreferred,
		config.TKeyLblAnniversaries,
		config.TKeyLblPreferences,
		config.TKeyLblContact,
		config.TKeyLblEmail,
		config.TKeyLblPhone,
		config.TKeyLblAddress,
		config.TKeyLblNotes,
		config.TKeyLblDate,
		config.TKeyLblLikes,
		config.TKeyLblHates,
		config.TKeyLblCustomAct,
		config.TKeyLblRemoteID,
		config.TKeyLblNextNone,
		config.TKeyLblNext,
		config.TKeyEvtSummary,
		config.TKeyNoticeNotFound,
		config.TKeyNoticeMismatch,
		config.TKeyNoticePaired,
		config.TKeyNoticeNoSel,
		config.TKeyNoticeSaveWarn,
		config.TKeyNotifFeedFail,
		config.TKeyNoticeInvalid,
		config.TKeyTitleNotice,
		config.TKeyNoticeImported,
		config.TKeyNoticeImportFail,
		config.TKeyNoticeEmptyAct,
		config.TKeyConfirmDelete,
		config.TKeyBtnEdit,
		config.TKeyBtnRemove,
		config.TKeyBtnImport,
		config.TKeyBtnSettings,
		config.TKeyBtnBrowse,
		config.TKeyWinSettings,
		config.TKeyLblLike,
		config.TKeyLblLanguage,
		config.TKeyHelpLanguage,
		config.TKeyLblPort,
		config.TKeyHelpPort,
		config.TKeyLblGeneral,
		config.TKeyLblEnableRem,
		config.TKeyLblNotif,
		config.TKeyLblStartDay,
		config.TKeyUnitDays,
		config.TKeyUnitHours,
		config.TKeyUnitMinutes,
		config.TKeyDirBefore,
		config.TKeyDirAfter,
		config.TKeyLblSource,
		config.TKeyModeWeb,
		config.TKeyModeLocal,
		config.TKeyLblURL,
		config.TKeyHelpURL,
		config.TKeyLblUser,
		config.TKeyLblPass,
		config.TKeyLblFooter,
		config.TKeyErrPortReq,
		config.TKeyErrPortNum,
		config.TKeyErrPortRange,
		config.TKeyErrDate,
}

// TestI18nIntegrity ensures every translation key defined in config.go exists
// in each locale file, and that no locale carries keys the code never uses.
func TestI18nIntegrity(t *testing.T) {
	defined := make(map[string]bool, len(translationKeys))
	for _, k := range translationKeys {
		defined[k] = true
	}

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			content, err := os.ReadFile(filepath.Join("locales", "active."+lang+".json"))
			require.NoError(t, err, "Must load the %s locale", lang)

			var jsonMap map[string]string
			require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be a flat map of strings")

			for key := range defined {
				msg, exists := jsonMap[key]
				if assert.Truef(t, exists, "Key '%s' defined in config.go is missing in %s", key, lang) {
					assert.NotEmpty(t, strings.TrimSpace(msg), key)
				}
			}
			for key := range jsonMap {
				assert.Truef(t, defined[key], "Key '%s' in %s is not defined in config.go", key, lang)
			}
		})
	}
}
