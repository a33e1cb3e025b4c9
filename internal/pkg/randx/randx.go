/*
Package randx generates identifiers: Base62 entity ids from crypto/rand, UUID based
message ids, and the time based ids given to AI-generated mentors.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the alphabet used for entity id suffixes (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the size of the Base62 alphabet.
	Base62Len = int64(len(Base62Chars))

	// EntitySuffixLength is the number of random characters after the entity prefix.
	EntitySuffixLength = 10
)

// Base62 returns n cryptographically random Base62 characters.
func Base62(n int) (string, error) {
	result := make([]byte, n)

	for i := range n {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// EntityID returns "<prefix>-<10 Base62 chars>", e.g. "alumni-4fQ9zT1bXe".
func EntityID(prefix string) (string, error) {
	suffix, err := Base62(EntitySuffixLength)
	if err != nil {
		return "", err
	}
	return prefix + "-" + suffix, nil
}

// IsValidEntityID checks that id has the given prefix followed by a Base62 suffix
// of EntitySuffixLength characters.
func IsValidEntityID(prefix, id string) bool {
	raw, ok := strings.CutPrefix(id, prefix+"-")
	if !ok || len(raw) != EntitySuffixLength {
		return false
	}

	for _, char := range raw {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

// MessageID returns a "msg-" prefixed UUID v4.
func MessageID() string {
	return "msg-" + uuid.New().String()
}

// MentorID returns "mentor-<unix millis + index>", the id given to a generated
// mentor the model returned without one.
func MentorID(now time.Time, index int) string {
	return "mentor-" + strconv.FormatInt(now.UnixMilli()+int64(index), 10)
}
