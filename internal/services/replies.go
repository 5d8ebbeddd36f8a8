// Package services – reply catalog
//
// All user-visible text lives here. The bot speaks Thai (matching its
// merchant audience); numbers in count-bearing confirmations are formatted
// through an x/text printer for the configured locale.
package services

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bcmerchant/line-bot-backend/internal/sysutil"
)

// Replies renders every localized message the bot sends.
type Replies struct {
	printer *message.Printer
}

// NewReplies builds a catalog for the given locale. language.Und falls back
// to Thai, the bot's primary audience.
func NewReplies(tag language.Tag) *Replies {
	if tag == language.Und {
		tag = language.Thai
	}
	return &Replies{printer: message.NewPrinter(tag)}
}

// Unsupported is the fixed refusal for non-text message types.
func (r *Replies) Unsupported() string {
	return "ขออภัย ตอนนี้รองรับเฉพาะข้อความตัวอักษรเท่านั้น"
}

// Cleared confirms a history wipe, naming how many turns were removed.
func (r *Replies) Cleared(count int64) string {
	return r.printer.Sprintf("ลบประวัติแชท %d ข้อความแล้ว", count)
}

// ClaimConfirmed congratulates a successful registration, naming the shop
// and the user.
func (r *Replies) ClaimConfirmed(shopName, displayName string) string {
	displayName = sysutil.FirstNonEmpty(displayName, "คุณ")
	return r.printer.Sprintf("ลงทะเบียนร้าน %s สำเร็จแล้ว ยินดีต้อนรับคุณ %s", shopName, displayName)
}

// Welcome greets a new follower with usage instructions.
func (r *Replies) Welcome(displayName string) string {
	displayName = sysutil.FirstNonEmpty(displayName, "คุณ")
	return r.printer.Sprintf("สวัสดีครับ %s!\n\nยินดีต้อนรับสู่ AI Chatbot\nพิมพ์ข้อความมาได้เลยครับ ผมพร้อมช่วยเหลือคุณ\n\nพิมพ์ /clear เพื่อลบประวัติแชท", displayName)
}

// EnrollInstructions tells the user how to enroll with the merchant system.
// The raw user id follows as a second message so it can be copied verbatim.
func (r *Replies) EnrollInstructions() string {
	return "กรุณานำ User ID ด้านล่างนี้ไปลงทะเบียนในระบบ BC Merchant"
}
