// Package settings exposes the flat settings table as typed per-section
// structs. Rows are keyed "section.key" with JSON-encoded values; missing
// rows fall back to the defaults enumerated here.
package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/cache"
	"github.com/mountain-community/backend/internal/models"
)

// Section names.
const (
	SectionSite         = "site"
	SectionReport       = "report"
	SectionNotification = "notification"
)

// legacyThresholdKey is the flat key older deployments wrote the auto-hide
// threshold under. It is still honored when the section key is absent.
const legacyThresholdKey = "report_threshold"

const cacheTTL = 30 * time.Second

type Site struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	AllowRegistration bool   `json:"allowRegistration"`
}

type Report struct {
	AutoHideThreshold int  `json:"autoHideThreshold"`
	NotifyReporter    bool `json:"notifyReporter"`
}

type Notification struct {
	OnReportStatus  bool `json:"onReportStatus"`
	OnAdminMessage  bool `json:"onAdminMessage"`
	SMSOnSuspension bool `json:"smsOnSuspension"`
}

func defaultSite() Site {
	return Site{Name: "Mountain Community", AllowRegistration: true}
}

func defaultReport() Report {
	return Report{AutoHideThreshold: 3, NotifyReporter: true}
}

func defaultNotification() Notification {
	return Notification{OnReportStatus: true, OnAdminMessage: true}
}

// Store reads and writes settings rows, memoizing sections in a small TTL
// cache so the report hot path does not hit the table on every request.
type Store struct {
	db    *gorm.DB
	cache *cache.TTLCache
}

func NewStore(db *gorm.DB) *Store {
	c, err := cache.New(64)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &Store{db: db, cache: c}
}

// sectionRows loads all rows with the given prefix into key → raw value.
func (s *Store) sectionRows(section string) (map[string]string, error) {
	var rows []models.Setting
	if err := s.db.Where("key_name LIKE ?", section+".%").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[strings.TrimPrefix(row.KeyName, section+".")] = row.Value
	}
	return out, nil
}

func decodeInto(raw string, dst interface{}) {
	// Values are JSON-encoded; rows written by hand may hold bare strings,
	// which fail to decode and keep the default.
	_ = json.Unmarshal([]byte(raw), dst)
}

func (s *Store) Site() (Site, error) {
	if v := s.cache.Get(SectionSite); v != nil {
		return v.(Site), nil
	}
	out := defaultSite()
	rows, err := s.sectionRows(SectionSite)
	if err != nil {
		return out, err
	}
	if raw, ok := rows["name"]; ok {
		decodeInto(raw, &out.Name)
	}
	if raw, ok := rows["description"]; ok {
		decodeInto(raw, &out.Description)
	}
	if raw, ok := rows["allowRegistration"]; ok {
		decodeInto(raw, &out.AllowRegistration)
	}
	s.cache.Set(SectionSite, out, cacheTTL)
	return out, nil
}

func (s *Store) Report() (Report, error) {
	if v := s.cache.Get(SectionReport); v != nil {
		return v.(Report), nil
	}
	out := defaultReport()
	rows, err := s.sectionRows(SectionReport)
	if err != nil {
		return out, err
	}
	if raw, ok := rows["autoHideThreshold"]; ok {
		decodeInto(raw, &out.AutoHideThreshold)
	} else if legacy := s.legacyThreshold(); legacy > 0 {
		out.AutoHideThreshold = legacy
	}
	if raw, ok := rows["notifyReporter"]; ok {
		decodeInto(raw, &out.NotifyReporter)
	}
	if out.AutoHideThreshold < 1 {
		out.AutoHideThreshold = defaultReport().AutoHideThreshold
	}
	s.cache.Set(SectionReport, out, cacheTTL)
	return out, nil
}

func (s *Store) Notification() (Notification, error) {
	if v := s.cache.Get(SectionNotification); v != nil {
		return v.(Notification), nil
	}
	out := defaultNotification()
	rows, err := s.sectionRows(SectionNotification)
	if err != nil {
		return out, err
	}
	if raw, ok := rows["onReportStatus"]; ok {
		decodeInto(raw, &out.OnReportStatus)
	}
	if raw, ok := rows["onAdminMessage"]; ok {
		decodeInto(raw, &out.OnAdminMessage)
	}
	if raw, ok := rows["smsOnSuspension"]; ok {
		decodeInto(raw, &out.SMSOnSuspension)
	}
	s.cache.Set(SectionNotification, out, cacheTTL)
	return out, nil
}

// legacyThreshold reads the pre-sectioned report_threshold row. The value
// there was stored as a bare integer string, not JSON.
func (s *Store) legacyThreshold() int {
	var row models.Setting
	if err := s.db.Where("key_name = ?", legacyThresholdKey).First(&row).Error; err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(row.Value))
	if err != nil {
		return 0
	}
	return n
}

// AutoHideThreshold returns the effective report threshold, never below 1.
func (s *Store) AutoHideThreshold() int {
	r, _ := s.Report()
	return r.AutoHideThreshold
}

// Section returns the typed value for a section name.
func (s *Store) Section(name string) (interface{}, error) {
	switch name {
	case SectionSite:
		return s.Site()
	case SectionReport:
		return s.Report()
	case SectionNotification:
		return s.Notification()
	}
	return nil, fmt.Errorf("unknown settings section %q", name)
}

// UpdateSection validates raw JSON against the section's struct and persists
// each field as its own "section.key" row.
func (s *Store) UpdateSection(name string, raw json.RawMessage) (interface{}, error) {
	switch name {
	case SectionSite:
		cur, err := s.Site()
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &cur); err != nil {
			return nil, fmt.Errorf("invalid site settings: %w", err)
		}
		if strings.TrimSpace(cur.Name) == "" {
			return nil, fmt.Errorf("site name must not be empty")
		}
		err = s.persist(name, map[string]interface{}{
			"name":              cur.Name,
			"description":       cur.Description,
			"allowRegistration": cur.AllowRegistration,
		})
		return cur, err
	case SectionReport:
		cur, err := s.Report()
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &cur); err != nil {
			return nil, fmt.Errorf("invalid report settings: %w", err)
		}
		if cur.AutoHideThreshold < 1 {
			return nil, fmt.Errorf("autoHideThreshold must be at least 1")
		}
		err = s.persist(name, map[string]interface{}{
			"autoHideThreshold": cur.AutoHideThreshold,
			"notifyReporter":    cur.NotifyReporter,
		})
		return cur, err
	case SectionNotification:
		cur, err := s.Notification()
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &cur); err != nil {
			return nil, fmt.Errorf("invalid notification settings: %w", err)
		}
		err = s.persist(name, map[string]interface{}{
			"onReportStatus":  cur.OnReportStatus,
			"onAdminMessage":  cur.OnAdminMessage,
			"smsOnSuspension": cur.SMSOnSuspension,
		})
		return cur, err
	}
	return nil, fmt.Errorf("unknown settings section %q", name)
}

func (s *Store) persist(section string, fields map[string]interface{}) error {
	for key, val := range fields {
		encoded, err := json.Marshal(val)
		if err != nil {
			return err
		}
		keyName := section + "." + key
		var row models.Setting
		err = s.db.Where("key_name = ?", keyName).First(&row).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			row = models.Setting{KeyName: keyName, Value: string(encoded)}
			if err := s.db.Create(&row).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := s.db.Model(&row).Update("value", string(encoded)).Error; err != nil {
				return err
			}
		}
	}
	s.cache.Delete(section)
	return nil
}
