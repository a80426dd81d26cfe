package membership

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"sportiq/internal/pkg/storage"
)

var codeFormat = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

func fixedService(t *testing.T, now time.Time) *Service {
	t.Helper()
	svc := NewService(storage.NewMemoryMembershipStore())
	svc.now = func() time.Time { return now }
	return svc
}

func TestGenerateCodeFormat(t *testing.T) {
	svc := fixedService(t, time.Now())
	ctx := context.Background()

	for _, label := range DurationLabels {
		code, err := svc.GenerateCode(ctx, label)
		if err != nil {
			t.Fatalf("GenerateCode(%s): %v", label, err)
		}
		if !codeFormat.MatchString(code) {
			t.Errorf("code %q does not match XXXX-XXXX-XXXX", code)
		}
	}

	if _, err := svc.GenerateCode(ctx, "2週"); err == nil {
		t.Error("expected error for unknown duration label")
	}
}

func TestRedeemCode(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, twTZ)
	svc := fixedService(t, now)
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, "1天")
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	ok, msg := svc.RedeemCode(ctx, 42, code)
	if !ok {
		t.Fatalf("redeem failed: %s", msg)
	}
	for _, fragment := range []string{"✅ 儲值成功！", "📋 序號：" + code, "⏱ 時長：1天", "📅 到期時間：2025/01/11 12:00"} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("message missing %q\n%s", fragment, msg)
		}
	}

	if !svc.IsMemberActive(ctx, 42) {
		t.Error("member inactive right after redeeming")
	}
	if svc.IsMemberActive(ctx, 43) {
		t.Error("unrelated user active")
	}
}

func TestRedeemCodeLowercaseAndSpaces(t *testing.T) {
	svc := fixedService(t, time.Now())
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, "30分鐘")
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	ok, msg := svc.RedeemCode(ctx, 1, "  "+strings.ToLower(code)+" ")
	if !ok {
		t.Errorf("redeem should normalize case and whitespace: %s", msg)
	}
}

func TestRedeemCodeRejections(t *testing.T) {
	svc := fixedService(t, time.Now())
	ctx := context.Background()

	ok, msg := svc.RedeemCode(ctx, 1, "AAAA-BBBB-CCCC")
	if ok || msg != "❌ 序號無效，請確認後再試。" {
		t.Errorf("invalid code: ok=%v msg=%q", ok, msg)
	}

	code, err := svc.GenerateCode(ctx, "1小時")
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if ok, _ := svc.RedeemCode(ctx, 1, code); !ok {
		t.Fatal("first redeem failed")
	}
	ok, msg = svc.RedeemCode(ctx, 2, code)
	if ok || msg != "❌ 此序號已被使用。" {
		t.Errorf("reused code: ok=%v msg=%q", ok, msg)
	}
}

func TestRedeemCodeExtendsActiveMembership(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, twTZ)
	svc := fixedService(t, now)
	ctx := context.Background()

	first, _ := svc.GenerateCode(ctx, "1天")
	second, _ := svc.GenerateCode(ctx, "1天")

	if ok, msg := svc.RedeemCode(ctx, 7, first); !ok {
		t.Fatalf("first redeem: %s", msg)
	}
	// Active membership stacks: the second day starts where the first ends.
	_, msg := svc.RedeemCode(ctx, 7, second)
	if !strings.Contains(msg, "2025/01/12 12:00") {
		t.Errorf("expected stacked expiry 2025/01/12 12:00\n%s", msg)
	}
}

func TestRedeemCodeExpiredMembershipRestartsFromNow(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, twTZ)
	store := storage.NewMemoryMembershipStore()
	svc := NewService(store)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	stale := now.Add(-48 * time.Hour)
	if err := store.SetMemberExpiry(ctx, 7, stale); err != nil {
		t.Fatal(err)
	}

	code, _ := svc.GenerateCode(ctx, "1小時")
	_, msg := svc.RedeemCode(ctx, 7, code)
	if !strings.Contains(msg, "2025/01/10 13:00") {
		t.Errorf("expired membership must restart from now\n%s", msg)
	}
}

func TestIsMemberActiveAdmin(t *testing.T) {
	svc := fixedService(t, time.Now())
	ctx := context.Background()

	if err := svc.AddAdmin(ctx, 99); err != nil {
		t.Fatal(err)
	}
	if !svc.IsMemberActive(ctx, 99) {
		t.Error("admin must always be active")
	}
	if got := svc.MemberExpiryText(ctx, 99); got != "♾️ 管理員（永久有效）" {
		t.Errorf("admin expiry text = %q", got)
	}
}

func TestMemberExpiryText(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, twTZ)
	store := storage.NewMemoryMembershipStore()
	svc := NewService(store)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	if got := svc.MemberExpiryText(ctx, 5); got != "" {
		t.Errorf("user without history = %q, want empty", got)
	}

	if err := store.SetMemberExpiry(ctx, 5, now.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if got := svc.MemberExpiryText(ctx, 5); got != "❌ 已過期（2025/01/10 11:00）" {
		t.Errorf("expired text = %q", got)
	}

	if err := store.SetMemberExpiry(ctx, 5, now.Add(25*time.Hour+30*time.Minute)); err != nil {
		t.Fatal(err)
	}
	want := "✅ 有效至 2025/01/11 13:30（剩餘 1天1小時）"
	if got := svc.MemberExpiryText(ctx, 5); got != want {
		t.Errorf("active text = %q, want %q", got, want)
	}

	if err := store.SetMemberExpiry(ctx, 5, now.Add(90*time.Minute)); err != nil {
		t.Fatal(err)
	}
	want = "✅ 有效至 2025/01/10 13:30（剩餘 1小時30分鐘）"
	if got := svc.MemberExpiryText(ctx, 5); got != want {
		t.Errorf("active text = %q, want %q", got, want)
	}
}

func TestAdminRoundTrip(t *testing.T) {
	svc := fixedService(t, time.Now())
	ctx := context.Background()

	if svc.IsAdmin(ctx, 1) {
		t.Fatal("fresh store has no admins")
	}
	if err := svc.AddAdmin(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if !svc.IsAdmin(ctx, 1) {
		t.Fatal("admin not visible after add")
	}
	if err := svc.RemoveAdmin(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if svc.IsAdmin(ctx, 1) {
		t.Fatal("admin still visible after remove")
	}
}
