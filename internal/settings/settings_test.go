package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mountain-community/backend/internal/models"
)

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Setting{}))

	return NewStore(db), db
}

func TestDefaults(t *testing.T) {
	store, _ := setupStore(t)

	site, err := store.Site()
	require.NoError(t, err)
	assert.Equal(t, "Mountain Community", site.Name)
	assert.True(t, site.AllowRegistration)

	report, err := store.Report()
	require.NoError(t, err)
	assert.Equal(t, 3, report.AutoHideThreshold)
	assert.True(t, report.NotifyReporter)

	notification, err := store.Notification()
	require.NoError(t, err)
	assert.True(t, notification.OnReportStatus)
	assert.True(t, notification.OnAdminMessage)
	assert.False(t, notification.SMSOnSuspension)
}

func TestNotificationSectionRoundTrip(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.UpdateSection(SectionNotification, json.RawMessage(`{"smsOnSuspension":true}`))
	require.NoError(t, err)

	notification, err := store.Notification()
	require.NoError(t, err)
	assert.True(t, notification.SMSOnSuspension)
	assert.True(t, notification.OnReportStatus)
}

func TestSectionRowsOverrideDefaults(t *testing.T) {
	store, db := setupStore(t)

	require.NoError(t, db.Create(&models.Setting{
		KeyName: "report.autoHideThreshold", Value: "5",
	}).Error)
	require.NoError(t, db.Create(&models.Setting{
		KeyName: "site.allowRegistration", Value: "false",
	}).Error)

	assert.Equal(t, 5, store.AutoHideThreshold())

	site, err := store.Site()
	require.NoError(t, err)
	assert.False(t, site.AllowRegistration)
}

func TestLegacyThresholdFallback(t *testing.T) {
	store, db := setupStore(t)

	// Older deployments stored a bare integer under a flat key.
	require.NoError(t, db.Create(&models.Setting{
		KeyName: "report_threshold", Value: " 7 ",
	}).Error)

	assert.Equal(t, 7, store.AutoHideThreshold())
}

func TestSectionKeyWinsOverLegacy(t *testing.T) {
	store, db := setupStore(t)

	require.NoError(t, db.Create(&models.Setting{
		KeyName: "report_threshold", Value: "7",
	}).Error)
	require.NoError(t, db.Create(&models.Setting{
		KeyName: "report.autoHideThreshold", Value: "2",
	}).Error)

	assert.Equal(t, 2, store.AutoHideThreshold())
}

func TestUnparsableThresholdFallsBackToDefault(t *testing.T) {
	store, db := setupStore(t)

	require.NoError(t, db.Create(&models.Setting{
		KeyName: "report_threshold", Value: "lots",
	}).Error)

	assert.Equal(t, 3, store.AutoHideThreshold())
}

func TestUpdateSectionRoundTrip(t *testing.T) {
	store, db := setupStore(t)

	_, err := store.UpdateSection(SectionReport, json.RawMessage(`{"autoHideThreshold":4,"notifyReporter":false}`))
	require.NoError(t, err)

	var row models.Setting
	require.NoError(t, db.Where("key_name = ?", "report.autoHideThreshold").First(&row).Error)
	assert.Equal(t, "4", row.Value)

	report, err := store.Report()
	require.NoError(t, err)
	assert.Equal(t, 4, report.AutoHideThreshold)
	assert.False(t, report.NotifyReporter)
}

func TestUpdateSectionPartialPayloadKeepsOtherFields(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.UpdateSection(SectionSite, json.RawMessage(`{"description":"A community for hikers"}`))
	require.NoError(t, err)

	site, err := store.Site()
	require.NoError(t, err)
	assert.Equal(t, "Mountain Community", site.Name)
	assert.Equal(t, "A community for hikers", site.Description)
}

func TestUpdateSectionValidation(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.UpdateSection(SectionReport, json.RawMessage(`{"autoHideThreshold":0}`))
	assert.Error(t, err)

	_, err = store.UpdateSection(SectionSite, json.RawMessage(`{"name":"  "}`))
	assert.Error(t, err)

	_, err = store.UpdateSection("nope", json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	store, _ := setupStore(t)

	// Prime the cache with the defaults.
	assert.Equal(t, 3, store.AutoHideThreshold())

	_, err := store.UpdateSection(SectionReport, json.RawMessage(`{"autoHideThreshold":9}`))
	require.NoError(t, err)

	assert.Equal(t, 9, store.AutoHideThreshold())
}
