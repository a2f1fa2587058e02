package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"already canonical", "nguyen van a", "nguyen van a"},
		{"diacritics and spacing", "  Nguyễn   Văn A ", "nguyen van a"},
		{"uppercase", "TRẦN THỊ B", "tran thi b"},
		{"tabs and newlines", "Le\t Van\nC", "le van c"},
		{"accented latin", "Élodie  Dupont", "elodie dupont"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.in))
		})
	}
}

func TestIDCard(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"mixed separators", "079-203 456a!", "079203456A"},
		{"lowercase", "abc-123", "ABC123"},
		{"surrounding space", "  079203000111  ", "079203000111"},
		{"only punctuation", "---", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IDCard(tt.in))
		})
	}
}

func TestToE164(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		region string
		want   string
	}{
		{"empty", "", "VN", ""},
		{"vietnamese mobile", "0912345678", "VN", "+84912345678"},
		{"already e164", "+84912345678", "VN", "+84912345678"},
		{"spaced local form", "091 234 5678", "VN", "+84912345678"},
		{"unparseable no digits", "not-a-number", "VN", ""},
		{"unparseable with digits", "12ab34", "VN", "1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToE164(tt.in, tt.region))
		})
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"html tags", "<b>12 Lý Thường Kiệt</b>", "12 Lý Thường Kiệt"},
		{"escaped entities", "12 L&#253; Th&#432;&#7901;ng Ki&#7879;t", "12 Lý Thường Kiệt"},
		{"whitespace runs", "  12   Hang Bai,  Hoan Kiem ", "12 Hang Bai, Hoan Kiem"},
		{"nested tags", "<div><script>x</script>District 1</div>", "District 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Address(tt.in))
		})
	}
}

// Normalization must be idempotent; exact matching depends on stored values
// comparing equal to freshly normalized input.
func TestIdempotence(t *testing.T) {
	samples := []string{
		"",
		"  Nguyễn   Văn A ",
		"079-203 456a!",
		"0912345678",
		"not-a-number",
		"<p>  12 &amp; 14 Hang Bai </p>",
		"ĐẶNG  hồng   sơn",
	}
	for _, s := range samples {
		assert.Equal(t, Name(s), Name(Name(s)), "Name not idempotent for %q", s)
		assert.Equal(t, IDCard(s), IDCard(IDCard(s)), "IDCard not idempotent for %q", s)
		assert.Equal(t, Address(s), Address(Address(s)), "Address not idempotent for %q", s)
		once := ToE164(s, "VN")
		assert.Equal(t, once, ToE164(once, "VN"), "ToE164 not idempotent for %q", s)
	}
}
