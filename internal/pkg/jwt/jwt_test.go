package jwt

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJWT(t *testing.T) {
	Convey("会话令牌", t, func() {
		j := NewJWT("test-secret", time.Hour)

		Convey("签发后可以解析出会话标识", func() {
			token, err := j.GenerateToken("session-123")
			So(err, ShouldBeNil)

			claims, err := j.ValidateToken(token)
			So(err, ShouldBeNil)
			So(claims.SessionID, ShouldEqual, "session-123")
			So(claims.Subject, ShouldEqual, "session-123")
		})

		Convey("密钥不同的令牌无效", func() {
			token, _ := NewJWT("other-secret", time.Hour).GenerateToken("s")
			_, err := j.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("过期令牌", func() {
			token, _ := NewJWT("test-secret", -time.Minute).GenerateToken("s")
			_, err := j.ValidateToken(token)
			So(err, ShouldEqual, ErrExpiredToken)
		})

		Convey("格式错误", func() {
			_, err := j.ValidateToken("not-a-token")
			So(err, ShouldEqual, ErrInvalidToken)
		})
	})
}
