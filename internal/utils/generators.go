package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

const orderNumberPrefix = "GS24"

// GenerateOrderNumber builds a human-readable order number from the last
// eight digits of the unix-millisecond clock plus three random digits.
func GenerateOrderNumber() string {
	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(1000))
	return fmt.Sprintf("%s%s%03d", orderNumberPrefix, millis, randomNum.Int64())
}

var verificationGroups = regexp.MustCompile(`^(\d{4})(\d{4})(\d+)$`)

// VerificationCode derives the pickup code shown/scanned at the counter:
// the order number minus its prefix, split into three dash-separated groups.
func VerificationCode(orderNumber string) string {
	digits := strings.TrimPrefix(orderNumber, orderNumberPrefix)
	return verificationGroups.ReplaceAllString(digits, "$1-$2-$3")
}

// GenerateOTP returns a six-digit one-time password.
func GenerateOTP() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(900000))
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
