package flow

import "strings"

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

// OTPInput models the fixed-length code entry widget: six single-character
// slots with an input focus that auto-advances on entry and retreats on
// backspace over an empty slot.
//
// OTPInput is not safe for concurrent use; the owning step serializes access.
type OTPInput struct {
	slots [CodeLength]string
	focus int
}

func NewOTPInput() *OTPInput {
	return &OTPInput{}
}

// EnterDigit applies an edit to the slot at index and reports whether the
// edit was accepted. A non-empty value must be a single ASCII digit;
// anything else is rejected with no state change. An empty value clears the
// slot. Accepting a digit at index < 5 advances focus to the next slot.
func (o *OTPInput) EnterDigit(index int, value string) bool {
	if index < 0 || index >= CodeLength {
		return false
	}

	if value != "" && !isDigit(value) {
		return false
	}

	o.slots[index] = value
	if value != "" && index < CodeLength-1 {
		o.focus = index + 1
	}
	return true
}

// Backspace handles a delete keypress on an already-empty slot: focus moves
// to the previous slot so rapid correction works without re-targeting.
// Deleting a slot's content is EnterDigit(index, "").
func (o *OTPInput) Backspace(index int) {
	if index <= 0 || index >= CodeLength {
		return
	}
	if o.slots[index] == "" {
		o.focus = index - 1
	}
}

// Reset clears every slot and returns focus to slot 0. Called on entry to an
// OTP step, after a failed verification and after a successful resend.
func (o *OTPInput) Reset() {
	o.slots = [CodeLength]string{}
	o.focus = 0
}

// Code returns the concatenation of all slots.
func (o *OTPInput) Code() string {
	return strings.Join(o.slots[:], "")
}

// Complete reports whether all six slots hold a digit.
func (o *OTPInput) Complete() bool {
	return len(o.Code()) == CodeLength
}

// Focus returns the index of the currently focused slot.
func (o *OTPInput) Focus() int {
	return o.focus
}

// Slots returns a copy of the current slot contents.
func (o *OTPInput) Slots() [CodeLength]string {
	return o.slots
}

func isDigit(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}
