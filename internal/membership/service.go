package membership

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"sportiq/internal/pkg/storage"
)

// twTZ is the bot's user-facing timezone.
var twTZ = time.FixedZone("Asia/Taipei", 8*60*60)

const expiryLayout = "2006/01/02 15:04"

// DurationOptions maps the top-up duration labels offered to admins to
// their length in minutes.
var DurationOptions = map[string]int{
	"30分鐘": 30,
	"1小時":  60,
	"1天":   1440,
	"7天":   10080,
	"30天":  43200,
}

// DurationLabels lists the duration options in menu order.
var DurationLabels = []string{"30分鐘", "1小時", "1天", "7天", "30天"}

const codeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Service implements admin management, prepaid code generation and
// redemption, and member expiry checks over a MembershipStore.
type Service struct {
	store storage.MembershipStore
	now   func() time.Time
}

func NewService(store storage.MembershipStore) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) IsAdmin(ctx context.Context, userID int64) bool {
	ok, err := s.store.IsAdmin(ctx, userID)
	return err == nil && ok
}

func (s *Service) AddAdmin(ctx context.Context, userID int64) error {
	return s.store.AddAdmin(ctx, userID)
}

func (s *Service) RemoveAdmin(ctx context.Context, userID int64) error {
	return s.store.RemoveAdmin(ctx, userID)
}

func (s *Service) Admins(ctx context.Context) ([]int64, error) {
	return s.store.Admins(ctx)
}

// GenerateCode creates one unused XXXX-XXXX-XXXX code for the given
// duration label and stores it. Collisions with existing codes trigger
// a regenerate.
func (s *Service) GenerateCode(ctx context.Context, durationLabel string) (string, error) {
	minutes, ok := DurationOptions[durationLabel]
	if !ok {
		return "", fmt.Errorf("unknown duration %q", durationLabel)
	}
	for {
		code := randomCode()
		err := s.store.CreateCode(ctx, code, minutes)
		if errors.Is(err, storage.ErrCodeExists) {
			continue
		}
		if err != nil {
			return "", err
		}
		return code, nil
	}
}

func randomCode() string {
	var b strings.Builder
	for part := 0; part < 3; part++ {
		if part > 0 {
			b.WriteByte('-')
		}
		for i := 0; i < 4; i++ {
			b.WriteByte(codeChars[rand.Intn(len(codeChars))])
		}
	}
	return b.String()
}

// RedeemCode burns a code for a user and extends their membership. The
// returned message is shown to the user verbatim; ok reports whether
// the redeem succeeded.
func (s *Service) RedeemCode(ctx context.Context, userID int64, rawCode string) (ok bool, message string) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))

	info, err := s.store.GetCode(ctx, code)
	if errors.Is(err, storage.ErrCodeNotFound) {
		return false, "❌ 序號無效，請確認後再試。"
	}
	if err != nil {
		return false, "❌ 系統忙碌中，請稍後再試。"
	}
	if info.UsedBy != 0 {
		return false, "❌ 此序號已被使用。"
	}

	if err := s.store.MarkCodeUsed(ctx, code, userID); err != nil {
		if errors.Is(err, storage.ErrCodeUsed) {
			return false, "❌ 此序號已被使用。"
		}
		return false, "❌ 系統忙碌中，請稍後再試。"
	}

	// A still-active membership extends from its expiry, not from now.
	now := s.now().In(twTZ)
	base := now
	if current, err := s.store.MemberExpiry(ctx, userID); err == nil && current != nil && current.After(now) {
		base = current.In(twTZ)
	}
	expiry := base.Add(time.Duration(info.Minutes) * time.Minute)

	if err := s.store.SetMemberExpiry(ctx, userID, expiry); err != nil {
		return false, "❌ 系統忙碌中，請稍後再試。"
	}

	return true, fmt.Sprintf("✅ 儲值成功！\n\n📋 序號：%s\n⏱ 時長：%s\n📅 到期時間：%s",
		code, durationLabel(info.Minutes), expiry.Format(expiryLayout))
}

func durationLabel(minutes int) string {
	for _, label := range DurationLabels {
		if DurationOptions[label] == minutes {
			return label
		}
	}
	return fmt.Sprintf("%d分鐘", minutes)
}

// IsMemberActive reports whether a user may use the paid features.
// Admins are always active.
func (s *Service) IsMemberActive(ctx context.Context, userID int64) bool {
	if s.IsAdmin(ctx, userID) {
		return true
	}
	expiry, err := s.store.MemberExpiry(ctx, userID)
	if err != nil || expiry == nil {
		return false
	}
	return s.now().Before(*expiry)
}

// MemberExpiryText renders the user's membership state for display.
// The empty string means the user never redeemed a code.
func (s *Service) MemberExpiryText(ctx context.Context, userID int64) string {
	if s.IsAdmin(ctx, userID) {
		return "♾️ 管理員（永久有效）"
	}

	expiry, err := s.store.MemberExpiry(ctx, userID)
	if err != nil || expiry == nil {
		return ""
	}

	now := s.now().In(twTZ)
	local := expiry.In(twTZ)
	expiresStr := local.Format(expiryLayout)
	if !now.Before(local) {
		return fmt.Sprintf("❌ 已過期（%s）", expiresStr)
	}

	diff := local.Sub(now)
	days := int(diff.Hours()) / 24
	hours := int(diff.Hours()) % 24
	minutes := int(diff.Minutes()) % 60

	var remain string
	switch {
	case days > 0:
		remain = fmt.Sprintf("%d天%d小時", days, hours)
	case hours > 0:
		remain = fmt.Sprintf("%d小時%d分鐘", hours, minutes)
	default:
		remain = fmt.Sprintf("%d分鐘", minutes)
	}
	return fmt.Sprintf("✅ 有效至 %s（剩餘 %s）", expiresStr, remain)
}
