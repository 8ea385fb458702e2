package database

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/glycocare/internal/domain"
	"github.com/vladimiradmaev/glycocare/internal/logger"
)

func TestUserProfileConversion(t *testing.T) {
	diabetes := "type1"
	tg := int64(4242)
	in := &domain.UserProfile{
		UserID:                    uuid.NewString(),
		Name:                      "Asha",
		TelegramID:                &tg,
		Age:                       41,
		Weight:                    63.5,
		DiabetesType:              &diabetes,
		HasBloodPressureCondition: true,
		Comorbidities:             []string{"hypertension", "ckd"},
	}

	row, err := UserFromDomain(in)
	require.NoError(t, err)
	assert.JSONEq(t, `["hypertension","ckd"]`, string(row.Comorbidities))

	assert.Equal(t, in, row.ToDomain())
}

func TestUserFromDomainLeavesUnsetFieldsNull(t *testing.T) {
	row, err := UserFromDomain(&domain.UserProfile{UserID: uuid.NewString()})
	require.NoError(t, err)
	assert.Nil(t, row.Age)
	assert.Nil(t, row.Weight)
	assert.Nil(t, row.Comorbidities)

	p := row.ToDomain()
	assert.Zero(t, p.Age)
	assert.Equal(t, domain.DefaultAge, p.WithDefaults().Age)
}

func TestToDomainLogsCorruptComorbidities(t *testing.T) {
	prev := logger.GetLogger()
	t.Cleanup(func() { logger.SetLogger(prev) })
	var buf bytes.Buffer
	logger.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	id := uuid.New()
	row := &User{ID: id, Name: "Ravi", Comorbidities: []byte(`["ckd",`)}

	p := row.ToDomain()

	assert.Nil(t, p.Comorbidities)
	assert.Equal(t, "Ravi", p.Name)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), id.String())
}

func TestUserFromDomainRejectsBadID(t *testing.T) {
	_, err := UserFromDomain(&domain.UserProfile{UserID: "telegram-12"})
	assert.Error(t, err)
}

func TestBeforeCreateAssignsID(t *testing.T) {
	u := &User{}
	require.NoError(t, u.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, u.ID)

	fixed := uuid.New()
	u = &User{ID: fixed}
	require.NoError(t, u.BeforeCreate(nil))
	assert.Equal(t, fixed, u.ID)
}
