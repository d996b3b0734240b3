package utils

import (
	"regexp"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)

// IsValidUsername 用户名至少 6 位，只允许字母、数字、下划线和点
func IsValidUsername(username string) bool {
	return len(username) >= 6 && usernameRegex.MatchString(username)
}

// IsStrongPassword 密码至少 8 位，必须包含大写、小写和数字
func IsStrongPassword(password string) bool {
	var hasLower, hasUpper, hasNumber bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasNumber = true
		}
	}
	return hasLower && hasUpper && hasNumber && len(password) >= 8
}
