package helpers

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-account-service/config"
	"github.com/oksasatya/go-account-service/pkg/mailer"
	mailtpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
)

type fakeResolver struct {
	geo mailtpl.Geo
	err error
}

func (f fakeResolver) Lookup(context.Context, string) (mailtpl.Geo, error) { return f.geo, f.err }

func testCfg() *config.Config { return &config.Config{AppName: "Accounts"} }

func TestGenTokenKey(t *testing.T) {
	a, err := GenTokenKey()
	require.NoError(t, err)
	b, err := GenTokenKey()
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{40}$`, a)
	assert.NotEqual(t, a, b)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("mylenana")
	require.NoError(t, err)
	assert.NotEqual(t, "mylenana", h)
	assert.True(t, CompareHashAndPassword(h, "mylenana"))
	assert.False(t, CompareHashAndPassword(h, "other"))
}

func TestSubjectForUniversal(t *testing.T) {
	assert.Equal(t, "Activate your account", SubjectForUniversal(map[string]any{"Type": mailtpl.ActivateAccount}))
	assert.Equal(t, "Your password was changed", SubjectForUniversal(map[string]any{"Type": "PASSWORD_CHANGED"}))
	assert.Equal(t, "Notification", SubjectForUniversal(map[string]any{}))
}

func TestMapTypedToUniversal(t *testing.T) {
	job := mailer.EmailJob{To: []string{"a@b.c"}, Template: "forgot_password"}
	MapTypedToUniversal(&job)
	EnsureRecipientAndEmail(&job)

	assert.Equal(t, mailtpl.Universal, job.Template)
	assert.Equal(t, "forgot_password", job.Data["Type"])
	assert.Equal(t, "a@b.c", job.Data["RecipientEmail"])

	raw := mailer.EmailJob{Template: "custom"}
	MapTypedToUniversal(&raw)
	assert.Equal(t, "custom", raw.Template)
}

func TestLocalizeTimesIfPossible(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)
	data := mailtpl.ToMap(mailtpl.NewBaseEmailData(testCfg(), mailtpl.PasswordChanged, "n", "e",
		mailtpl.WithIP("1.2.3.4"), mailtpl.WithTime(at)))

	LocalizeTimesIfPossible(context.Background(), fakeResolver{geo: mailtpl.Geo{City: "Nairobi", Timezone: "Africa/Nairobi"}}, data)
	assert.Equal(t, "02 January 2024, 06:04 EAT", data["Time"])
	assert.Equal(t, "Nairobi", data["Location"])

	untouched := map[string]any{"IP": "1.2.3.4", "Time": "x"}
	LocalizeTimesIfPossible(context.Background(), fakeResolver{err: errors.New("down")}, untouched)
	assert.Equal(t, "x", untouched["Time"])
}
