package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/feedesk/internal/domain"
	customError "github.com/segyhp/feedesk/pkg/errors"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantIDs []string
		wantErr bool
	}{
		{
			name:    "top level array",
			body:    `[{"id":"S1"},{"id":"S2"}]`,
			wantIDs: []string{"S1", "S2"},
		},
		{
			name:    "data envelope",
			body:    ` {"success": true, "data": [{"id":"S1"}]}`,
			wantIDs: []string{"S1"},
		},
		{
			name:    "empty array",
			body:    `{"data": []}`,
			wantIDs: []string{},
		},
		{
			name:    "object without data",
			body:    `{"students": [{"id":"S1"}]}`,
			wantErr: true,
		},
		{
			name:    "data holds object",
			body:    `{"data": {"id":"S1"}}`,
			wantErr: true,
		},
		{
			name:    "data is null",
			body:    `{"data": null}`,
			wantErr: true,
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: true,
		},
		{
			name:    "scalar body",
			body:    `"ok"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			students, err := DecodeList[domain.Student]([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, customError.ErrUnexpectedEnvelope))
				return
			}
			require.NoError(t, err)

			ids := make([]string, 0, len(students))
			for _, s := range students {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestDecodeList_MissingFieldsDefaultToZero(t *testing.T) {
	students, err := DecodeList[domain.Student]([]byte(`[{"id":"S1","name":"Amina"}]`))
	require.NoError(t, err)

	require.Len(t, students, 1)
	assert.True(t, students[0].TotalFee.IsZero())
	assert.Nil(t, students[0].CreatedAt)
}

func TestDecodeList_FeeAmounts(t *testing.T) {
	body := `{"data":[
		{"id":"F1","studentId":"S1","status":"paid","amount":"30000","paidAmount":20000.50,"paidDate":"2024-03-15T09:00:00Z"},
		{"id":"F2","studentId":"S1","status":"pending","amount":30000}
	]}`

	fees, err := DecodeList[domain.FeePayment]([]byte(body))
	require.NoError(t, err)

	require.Len(t, fees, 2)
	require.NotNil(t, fees[0].PaidAmount)
	assert.Equal(t, "20000.5", fees[0].PaidAmount.String())
	assert.Equal(t, "20000.5", fees[0].Settled().String())
	require.NotNil(t, fees[0].PaidDate)
	assert.Nil(t, fees[1].PaidAmount)
	assert.Equal(t, "30000", fees[1].Settled().String())
}

func TestDecodeOne(t *testing.T) {
	direct, err := DecodeOne[domain.Department]([]byte(`{"id":"D1","name":"Science"}`))
	require.NoError(t, err)
	assert.Equal(t, "D1", direct.ID)

	wrapped, err := DecodeOne[domain.Department]([]byte(`{"data":{"id":"D2","name":"Arts"}}`))
	require.NoError(t, err)
	assert.Equal(t, "D2", wrapped.ID)

	_, err = DecodeOne[domain.Department]([]byte(`[{"id":"D1"}]`))
	assert.True(t, errors.Is(err, customError.ErrUnexpectedEnvelope))

	_, err = DecodeOne[domain.Department]([]byte(`{"data":[{"id":"D1"}]}`))
	assert.True(t, errors.Is(err, customError.ErrUnexpectedEnvelope))
}
