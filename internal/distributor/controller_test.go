package distributor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statement-distributor/internal/distributor"
	mock_extract "statement-distributor/internal/extract/mocks"
	"statement-distributor/internal/mailer"
	mock_mailer "statement-distributor/internal/mailer/mocks"
	"statement-distributor/internal/models"
	apperrors "statement-distributor/pkg/errors"
	"statement-distributor/pkg/logger"
)

var infrastructure = models.AccountGroup{
	Name:         "Infrastructure",
	Type:         models.GroupTypeDepartmental,
	ContactEmail: "infra@example.org",
	Ranges:       []models.AccountRange{{Start: "6000", End: "6999"}},
}

func monthPeriod(m time.Month) models.SubPeriod {
	from := time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC)
	return models.SubPeriod{From: from, To: from.AddDate(0, 1, -1)}
}

func record(gl, at, merchant string) models.TransactionRecord {
	return models.TransactionRecord{
		GLAccountCode:    gl,
		OccurredAt:       models.Timestamp(at),
		CounterpartyName: merchant,
		GrossAmount:      models.Cents(1000),
	}
}

func testConfig(t *testing.T) distributor.Config {
	return distributor.Config{
		Source:    models.SourceRamp,
		OutputDir: filepath.Join(t.TempDir(), "statements"),
		Template: mailer.Template{
			Subject: "Ramp Statement - {account_group} - {from_date} to {to_date}",
			Body:    "Dear {department},\n\nAttached is your statement.",
		},
	}
}

func TestProcessGroup_FiltersByRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	extractor := mock_extract.NewMockExtractor(ctrl)
	mockMailer := mock_mailer.NewMockMailer(ctrl)
	jan := monthPeriod(time.January)

	extractor.EXPECT().Extract(gomock.Any(), jan).Return([]models.TransactionRecord{
		record("6450", "2024-01-15T10:00:00Z", "Hetzner"),
		record("7000", "2024-01-16T10:00:00Z", "Airline"),
		record("", "2024-01-17T10:00:00Z", "Unclassified"),
	}, nil)

	var sent mailer.Message
	mockMailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg mailer.Message) error {
		sent = msg
		return nil
	})

	c := distributor.NewController(testConfig(t), extractor, mockMailer, logger.NewNopLogger())
	result := c.ProcessGroup(context.Background(), infrastructure, []models.SubPeriod{jan})

	assert.Equal(t, distributor.OutcomeSuccessful, result.Outcome)
	assert.Equal(t, 1, result.Records)
	assert.Equal(t, []distributor.State{
		distributor.StatePending, distributor.StateExtracting, distributor.StateRendering,
		distributor.StateSending, distributor.StateRecorded,
	}, result.States)

	assert.Equal(t, "infra@example.org", sent.To)
	assert.Equal(t, "Ramp Statement - Infrastructure - 2024-01-01 to 2024-01-31", sent.Subject)
	assert.Equal(t, "Dear Infrastructure,\n\nAttached is your statement.", sent.Body)
	require.NotNil(t, sent.Attachment)
	assert.Equal(t, "Ramp-Infrastructure-2024-01-01-2024-01-31.csv", sent.Attachment.Filename)

	content := string(sent.Attachment.Content)
	assert.Contains(t, content, "Hetzner")
	assert.NotContains(t, content, "Airline")
	assert.NotContains(t, content, "Unclassified")

	onDisk, err := os.ReadFile(result.StatementPath)
	require.NoError(t, err)
	assert.Equal(t, sent.Attachment.Content, onDisk)
}

func TestProcessGroup_NoActivity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	extractor := mock_extract.NewMockExtractor(ctrl)
	mockMailer := mock_mailer.NewMockMailer(ctrl)
	jan := monthPeriod(time.January)
	cfg := testConfig(t)

	extractor.EXPECT().Extract(gomock.Any(), jan).Return([]models.TransactionRecord{
		record("7000", "2024-01-16T10:00:00Z", "Airline"),
	}, nil)

	var sent mailer.Message
	mockMailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg mailer.Message) error {
		sent = msg
		return nil
	}).Times(1)

	c := distributor.NewController(cfg, extractor, mockMailer, logger.NewNopLogger())
	stats := c.Run(context.Background(), []models.AccountGroup{infrastructure}, []models.SubPeriod{jan})

	assert.Equal(t, []string{"Infrastructure"}, stats.NoActivity)
	assert.Empty(t, stats.Successful)
	assert.Equal(t, 0, stats.ExitCode())

	assert.Nil(t, sent.Attachment)
	assert.Equal(t, "Ramp Statement - Infrastructure - 2024-01-01 to 2024-01-31 (No Activity)", sent.Subject)
	assert.Contains(t, sent.Body, "No Ramp activity occurred")

	_, err := os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(err), "no statement file should be created")
}

func TestProcessGroup_SkipNoActivity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	extractor := mock_extract.NewMockExtractor(ctrl)
	mockMailer := mock_mailer.NewMockMailer(ctrl)
	cfg := testConfig(t)
	cfg.SkipNoActivity = true

	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil, nil)

	c := distributor.NewController(cfg, extractor, mockMailer, logger.NewNopLogger())
	result := c.ProcessGroup(context.Background(), infrastructure, []models.SubPeriod{monthPeriod(time.January)})

	assert.Equal(t, distributor.OutcomeSkipped, result.Outcome)
	assert.Contains(t, result.States, distributor.StateNoActivity)
}

func TestProcessGroup_MonthSpanMergesIntoOneStatement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	extractor := mock_extract.NewMockExtractor(ctrl)
	mockMailer := mock_mailer.NewMockMailer(ctrl)
	jan, feb, mar := monthPeriod(time.January), monthPeriod(time.February), monthPeriod(time.March)

	gomock.InOrder(
		extractor.EXPECT().Extract(gomock.Any(), jan).Return([]models.TransactionRecord{
			record("6450", "2024-01-20T10:00:00Z", "jan-6450"),
			record("6100", "2024-01-21T10:00:00Z", "jan-6100"),
		}, nil),
		extractor.EXPECT().Extract(gomock.Any(), feb).Return([]models.TransactionRecord{
			record("6100", "2024-02-02T10:00:00Z", "feb-6100"),
		}, nil),
		extractor.EXPECT().Extract(gomock.Any(), mar).Return([]models.TransactionRecord{
			record("6450", "2024-03-03T10:00:00Z", "mar-6450"),
		}, nil),
	)

	var attachments []*mailer.Attachment
	mockMailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg mailer.Message) error {
		attachments = append(attachments, msg.Attachment)
		return nil
	}).Times(1)

	c := distributor.NewController(testConfig(t), extractor, mockMailer, logger.NewNopLogger())
	result := c.ProcessGroup(context.Background(), infrastructure, []models.SubPeriod{jan, feb, mar})

	require.Equal(t, distributor.OutcomeSuccessful, result.Outcome)
	require.Len(t, attachments, 1)
	assert.Equal(t, "Ramp-Infrastructure-2024-01-01-2024-03-31.csv", attachments[0].Filename)

	lines := strings.Split(strings.TrimSpace(string(attachments[0].Content)), "\r\n")
	require.Len(t, lines, 5)
	order := []string{"jan-6100", "feb-6100", "jan-6450", "mar-6450"}
	for i, merchant := range order {
		assert.Contains(t, lines[i+1], merchant)
	}
}

func TestProcessGroup_InvalidConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no calls expected on either mock
	extractor := mock_extract.NewMockExtractor(ctrl)
	mockMailer := mock_mailer.NewMockMailer(ctrl)

	c := distributor.NewController(testConfig(t), extractor, mockMailer, logger.NewNopLogger())

	for _, group := range []models.AccountGroup{
		{Name: "Brand", Type: models.GroupTypeDepartmental},
		{ContactEmail: "x@example.org", Type: models.GroupTypeDepartmental},
	} {
		result := c.ProcessGroup(context.Background(), group, []models.SubPeriod{monthPeriod(time.January)})
		assert.Equal(t, distributor.OutcomeFailed, result.Outcome)
		assert.Contains(t, result.Reason, "invalid configuration")
		assert.Equal(t, []distributor.State{
			distributor.StatePending, distributor.StateInvalidConfig, distributor.StateRecorded,
		}, result.States)
		assert.True(t, apperrors.HasCategory(result.Err, apperrors.CategoryGroupConfig))
	}
}

func TestProcessGroup_Failures(t *testing.T) {
	jan := monthPeriod(time.January)
	matching := []models.TransactionRecord{record("6450", "2024-01-15T10:00:00Z", "Hetzner")}

	tests := []struct {
		name       string
		setup      func(e *mock_extract.MockExtractor, m *mock_mailer.MockMailer)
		outputDir  func(t *testing.T) string
		wantReason string
	}{
		{
			name: "extraction error",
			setup: func(e *mock_extract.MockExtractor, m *mock_mailer.MockMailer) {
				e.EXPECT().Extract(gomock.Any(), jan).Return(nil,
					apperrors.ExtractionError(apperrors.CodeQueryFailed, "ramp extract", errors.New("database is locked")))
			},
			wantReason: "extraction failed: database is locked",
		},
		{
			name: "plain extraction error is categorised",
			setup: func(e *mock_extract.MockExtractor, m *mock_mailer.MockMailer) {
				e.EXPECT().Extract(gomock.Any(), jan).Return(nil, errors.New("disk I/O error"))
			},
			wantReason: "extraction failed: disk I/O error",
		},
		{
			name: "render error",
			setup: func(e *mock_extract.MockExtractor, m *mock_mailer.MockMailer) {
				e.EXPECT().Extract(gomock.Any(), jan).Return(matching, nil)
			},
			outputDir: func(t *testing.T) string {
				blocker := filepath.Join(t.TempDir(), "blocker")
				require.NoError(t, os.WriteFile(blocker, nil, 0644))
				return blocker
			},
			wantReason: "render failed",
		},
		{
			name: "send error",
			setup: func(e *mock_extract.MockExtractor, m *mock_mailer.MockMailer) {
				e.EXPECT().Extract(gomock.Any(), jan).Return(matching, nil)
				m.EXPECT().Send(gomock.Any(), gomock.Any()).Return(
					apperrors.SendError(apperrors.CodeDeliveryFailed, "infra@example.org", errors.New("550 mailbox unavailable")))
			},
			wantReason: "send failed: 550 mailbox unavailable",
		},
		{
			name: "no-activity send error",
			setup: func(e *mock_extract.MockExtractor, m *mock_mailer.MockMailer) {
				e.EXPECT().Extract(gomock.Any(), jan).Return(nil, nil)
				m.EXPECT().Send(gomock.Any(), gomock.Any()).Return(
					apperrors.SendError(apperrors.CodeConnectionFailed, "infra@example.org", errors.New("connection refused")))
			},
			wantReason: "send failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			extractor := mock_extract.NewMockExtractor(ctrl)
			mockMailer := mock_mailer.NewMockMailer(ctrl)
			tt.setup(extractor, mockMailer)

			cfg := testConfig(t)
			if tt.outputDir != nil {
				cfg.OutputDir = tt.outputDir(t)
			}

			c := distributor.NewController(cfg, extractor, mockMailer, logger.NewNopLogger())
			stats := c.Run(context.Background(), []models.AccountGroup{infrastructure}, []models.SubPeriod{jan})

			require.Len(t, stats.Failed, 1)
			assert.Equal(t, "Infrastructure", stats.Failed[0].Group)
			assert.Contains(t, stats.Failed[0].Reason, tt.wantReason)
			assert.Equal(t, 1, stats.ExitCode())
		})
	}
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	extractor := mock_extract.NewMockExtractor(ctrl)
	mockMailer := mock_mailer.NewMockMailer(ctrl)
	jan := monthPeriod(time.January)

	brand := models.AccountGroup{
		Name: "Brand", Type: models.GroupTypeDepartmental, ContactEmail: "brand@example.org",
		Ranges: []models.AccountRange{{Start: "7100", End: "7199"}},
	}
	noEmail := models.AccountGroup{Name: "Legal", Type: models.GroupTypeDepartmental}

	extractor.EXPECT().Extract(gomock.Any(), jan).Return(nil, errors.New("locked"))
	extractor.EXPECT().Extract(gomock.Any(), jan).Return([]models.TransactionRecord{
		record("7150", "2024-01-05", "Printer"),
	}, nil)
	mockMailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	c := distributor.NewController(testConfig(t), extractor, mockMailer, logger.NewNopLogger())
	stats := c.Run(context.Background(), []models.AccountGroup{infrastructure, noEmail, brand}, []models.SubPeriod{jan})

	assert.Equal(t, 3, stats.TotalGroups)
	assert.Equal(t, 3, stats.Processed())
	assert.Equal(t, []string{"Brand"}, stats.Successful)
	require.Len(t, stats.Failed, 2)
	assert.Equal(t, "Infrastructure", stats.Failed[0].Group)
	assert.Equal(t, "Legal", stats.Failed[1].Group)
	assert.Equal(t, "2024-01-01 to 2024-01-31", stats.Period.String())
}

func TestRun_DryRunMatchesRealClassification(t *testing.T) {
	jan := monthPeriod(time.January)
	brand := models.AccountGroup{
		Name: "Brand", Type: models.GroupTypeDepartmental, ContactEmail: "brand@example.org",
		Ranges: []models.AccountRange{{Start: "7100", End: "7199"}},
	}
	groups := []models.AccountGroup{infrastructure, brand, {Name: "Legal", Type: models.GroupTypeDepartmental}}
	records := []models.TransactionRecord{record("6450", "2024-01-15T10:00:00Z", "Hetzner")}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	realExtractor := mock_extract.NewMockExtractor(ctrl)
	realExtractor.EXPECT().Extract(gomock.Any(), jan).Return(records, nil).Times(2)
	realMailer := mock_mailer.NewMockMailer(ctrl)
	realMailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	dryExtractor := mock_extract.NewMockExtractor(ctrl)
	dryExtractor.EXPECT().Extract(gomock.Any(), jan).Return(records, nil).Times(2)
	dryMailer := mailer.NewDryRunMailer(logger.NewNopLogger())

	live := distributor.NewController(testConfig(t), realExtractor, realMailer, logger.NewNopLogger()).
		Run(context.Background(), groups, []models.SubPeriod{jan})
	dry := distributor.NewController(testConfig(t), dryExtractor, dryMailer, logger.NewNopLogger()).
		Run(context.Background(), groups, []models.SubPeriod{jan})

	assert.Equal(t, live, dry)
	assert.Len(t, dryMailer.Sent(), 2)
}
