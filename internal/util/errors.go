package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrUserDisabled        = errors.New("账号已被禁用")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrCourseNotFound      = errors.New("course not found")
	ErrModuleNotFound      = errors.New("course module not found")
	ErrNotEnrolled         = errors.New("not enrolled in this course")
	ErrAlreadyEnrolled     = errors.New("already enrolled in this course")
	ErrQuizNotFound        = errors.New("quiz not found")
	ErrCTFNotFound         = errors.New("ctf event not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrAlreadyRegistered   = errors.New("already registered for this ctf")
	ErrNotRegistered       = errors.New("not registered for this ctf")
	ErrCTFNotActive        = errors.New("ctf event is not active")
	ErrWrongFlag           = errors.New("incorrect flag")
	ErrAlreadySolved       = errors.New("question already solved")
	ErrPostNotFound        = errors.New("post not found")
	ErrReferralCodeInvalid = errors.New("referral code invalid")
	ErrTierNotReached      = errors.New("referral tier not reached")
	ErrTierAlreadyClaimed  = errors.New("referral tier reward already claimed")
)
