// Package attendance implements the daily check-in/check-out state machine
// behind both the QR scan endpoint and the authenticated JSON actions.
//
// Per (user, day) the record walks NONE -> CHECKED_IN -> COMPLETE and no
// state is re-enterable once complete.
package attendance

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/LabaLabaSunda/Attendance-system/internal/models"
	"github.com/LabaLabaSunda/Attendance-system/internal/token"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DateLayout is the calendar-day format carried in scan URLs and stored
// on attendance rows.
const DateLayout = "2006-01-02"

// Code classifies a scan outcome.
type Code string

const (
	CodeOK              Code = "OK"
	CodeInvalidRequest  Code = "INVALID_REQUEST"
	CodeUserNotFound    Code = "USER_NOT_FOUND"
	CodeBadDateFormat   Code = "BAD_DATE_FORMAT"
	CodeTokenExpired    Code = "TOKEN_EXPIRED"
	CodeAlreadyComplete Code = "ALREADY_COMPLETE"
	CodePersistence     Code = "PERSISTENCE_ERROR"
)

// Outcome is the result of one scan. Every path, valid or not, produces a
// human-readable message; failures never mutate state.
type Outcome struct {
	Code     Code
	Success  bool
	Action   string // "Check-in" / "Check-out" on success
	Message  string
	User     *models.User
	Time     time.Time
	Duration string // "X jam Y menit", check-out only
}

// errRowRace signals that a concurrent scan created today's row first.
var errRowRace = errors.New("attendance row created concurrently")

// Service runs attendance state transitions inside request-scoped
// transactions.
type Service struct {
	DB     *gorm.DB
	Tokens *token.Store

	// StrictToken makes Scan compare the presented token against the one
	// issued for (user, today). When false only user and date are checked,
	// matching the legacy behavior.
	StrictToken bool

	// Now is the service clock, replaceable in tests.
	Now func() time.Time
}

func NewService(db *gorm.DB, tokens *token.Store, strictToken bool) *Service {
	return &Service{
		DB:          db,
		Tokens:      tokens,
		StrictToken: strictToken,
		Now:         time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Today returns the current calendar day per the service clock.
func (s *Service) Today() string {
	return s.now().Format(DateLayout)
}

// Scan validates a (user_id, token, date) triple from a scanned QR URL and
// advances today's attendance record. Validation is fail-fast: each check
// maps to a distinct outcome and nothing is written until all pass.
func (s *Service) Scan(userIDStr, tok, dateStr string) Outcome {
	if userIDStr == "" || tok == "" || dateStr == "" {
		return Outcome{
			Code:    CodeInvalidRequest,
			Message: "QR Code tidak valid atau sudah kadaluarsa!",
		}
	}

	var user models.User
	userID, err := strconv.ParseUint(userIDStr, 10, 32)
	if err == nil {
		err = s.DB.First(&user, uint(userID)).Error
	}
	if err != nil {
		return Outcome{
			Code:    CodeUserNotFound,
			Message: "User tidak ditemukan!",
		}
	}

	if _, err := time.Parse(DateLayout, dateStr); err != nil {
		return Outcome{
			Code:    CodeBadDateFormat,
			Message: "Format tanggal tidak valid!",
		}
	}

	today := s.Today()
	if dateStr != today {
		return Outcome{
			Code:    CodeTokenExpired,
			Message: "QR Code sudah kadaluarsa! Gunakan QR Code hari ini.",
		}
	}

	if s.StrictToken {
		rec, ok := s.Tokens.Get(user.ID, today)
		if !ok || rec.Token != tok {
			return Outcome{
				Code:    CodeTokenExpired,
				Message: "QR Code sudah kadaluarsa! Gunakan QR Code hari ini.",
			}
		}
	}

	return s.transition(&user, today)
}

// transition performs the read-modify-write for today's record in one
// transaction so concurrent scans cannot both create a row.
func (s *Service) transition(user *models.User, today string) Outcome {
	now := s.now()
	var out Outcome

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var att models.Attendance
		err := tx.Where("user_id = ? AND date = ?", user.ID, today).First(&att).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			att = models.Attendance{
				UserID: user.ID,
				Date:   today,
				TimeIn: &now,
				Status: models.StatusHadir,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&att)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// another scan won the (user, day) unique index race
				return errRowRace
			}
			out = Outcome{
				Code:    CodeOK,
				Success: true,
				Action:  "Check-in",
				Message: fmt.Sprintf("Check-in berhasil untuk %s!", user.Username),
				User:    user,
				Time:    now,
			}

		case att.TimeIn == nil:
			att.TimeIn = &now
			att.Status = models.StatusHadir
			if err := tx.Save(&att).Error; err != nil {
				return err
			}
			out = Outcome{
				Code:    CodeOK,
				Success: true,
				Action:  "Check-in",
				Message: fmt.Sprintf("Check-in berhasil untuk %s!", user.Username),
				User:    user,
				Time:    now,
			}

		case att.TimeOut == nil:
			att.TimeOut = &now
			if err := tx.Save(&att).Error; err != nil {
				return err
			}
			out = Outcome{
				Code:     CodeOK,
				Success:  true,
				Action:   "Check-out",
				Message:  fmt.Sprintf("Check-out berhasil untuk %s!", user.Username),
				User:     user,
				Time:     now,
				Duration: FormatDuration(now.Sub(*att.TimeIn)),
			}

		default:
			out = Outcome{
				Code:    CodeAlreadyComplete,
				Message: fmt.Sprintf("%s sudah menyelesaikan absensi hari ini!", user.Username),
				User:    user,
			}
		}
		return nil
	})

	if err != nil {
		return Outcome{
			Code:    CodePersistence,
			Message: "Gagal menyimpan absensi, silakan coba lagi.",
			User:    user,
		}
	}
	return out
}

// Do handles the authenticated JSON variant: an explicit checkin/checkout
// action against the caller's own identity, no token involved. Same
// single-check-in/single-check-out rule per day.
func (s *Service) Do(userID uint, action string) (bool, string) {
	now := s.now()
	today := now.Format(DateLayout)

	var success bool
	var message string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var att models.Attendance
		err := tx.Where("user_id = ? AND date = ?", userID, today).First(&att).Error
		missing := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !missing {
			return err
		}

		switch action {
		case "checkin":
			switch {
			case missing:
				att = models.Attendance{
					UserID: userID,
					Date:   today,
					TimeIn: &now,
					Status: models.StatusHadir,
				}
				res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&att)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return errRowRace
				}
				success, message = true, "Check-in berhasil!"
			case att.TimeIn == nil:
				att.TimeIn = &now
				att.Status = models.StatusHadir
				if err := tx.Save(&att).Error; err != nil {
					return err
				}
				success, message = true, "Check-in berhasil!"
			default:
				success, message = false, "Anda sudah check-in hari ini!"
			}

		case "checkout":
			switch {
			case missing || att.TimeIn == nil:
				success, message = false, "Anda harus check-in terlebih dahulu!"
			case att.TimeOut == nil:
				att.TimeOut = &now
				if err := tx.Save(&att).Error; err != nil {
					return err
				}
				success, message = true, "Check-out berhasil!"
			default:
				success, message = false, "Anda sudah check-out hari ini!"
			}

		default:
			success, message = false, "Aksi tidak valid!"
		}
		return nil
	})

	if err != nil {
		return false, "Gagal menyimpan absensi, silakan coba lagi."
	}
	return success, message
}

// FormatDuration renders an elapsed working duration as whole hours and
// remainder minutes, e.g. 9h30m -> "9 jam 30 menit". Floor division on
// the elapsed seconds, matching how reports show it.
func FormatDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 0 {
		secs = 0
	}
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	return fmt.Sprintf("%d jam %d menit", hours, minutes)
}
