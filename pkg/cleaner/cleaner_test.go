package cleaner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/rewards-staging/pkg/export"
	"github.com/David-Botos/rewards-staging/pkg/model"
	"github.com/David-Botos/rewards-staging/pkg/rawdoc"
)

type DataCleanerSuite struct {
	suite.Suite
	rawDir  string
	csvDir  string
	jsonDir string
	cleaner *DataCleaner
}

func TestDataCleanerSuite(t *testing.T) {
	suite.Run(t, new(DataCleanerSuite))
}

func (s *DataCleanerSuite) SetupTest() {
	root := s.T().TempDir()
	s.rawDir = filepath.Join(root, "raw")
	s.csvDir = filepath.Join(root, "out", "csv")
	s.jsonDir = filepath.Join(root, "out", "json")
	s.Require().NoError(os.MkdirAll(s.rawDir, 0o755))

	s.writeRaw(ReceiptsFile,
		`{"_id":{"$oid":"r1"},"createDate":{"$date":1609687531000},"totalSpent":"26.00","rewardsReceiptItemList":[{"barcode":"4011","finalPrice":"26.00"},{"barcode":"1234"}]}`,
		``,
		`{"_id":{"$oid":"r2"},"pointsEarned":"n/a"}`,
	)
	s.writeRaw(BrandsFile,
		`{"_id":{"$oid":"b1"},"brandCode":"12345","category":"Baking","name":"Pepsi & Co","cpg":{"$id":{"$oid":"c1"},"$ref":"Cpgs"}}`,
	)
	s.writeRaw(UsersFile, userLines...)

	var err error
	s.cleaner, err = NewDataCleaner(s.rawDir, export.NewWriter(s.csvDir, s.jsonDir), zaptest.NewLogger(s.T()))
	s.Require().NoError(err)
}

func (s *DataCleanerSuite) writeRaw(name string, lines ...string) {
	path := filepath.Join(s.rawDir, name)
	s.Require().NoError(os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func (s *DataCleanerSuite) TestNewDataCleaner() {
	s.Run("nil sink returns error", func() {
		_, err := NewDataCleaner(s.rawDir, nil, zaptest.NewLogger(s.T()))
		s.Error(err)
	})

	s.Run("nil logger returns error", func() {
		_, err := NewDataCleaner(s.rawDir, export.NewWriter(s.csvDir, s.jsonDir), nil)
		s.Error(err)
	})
}

func (s *DataCleanerSuite) TestRunWritesEveryExport() {
	result, err := s.cleaner.Run(context.Background())
	s.Require().NoError(err)

	s.NotEmpty(result.RunID)
	s.Equal(map[string]int{"receipts": 2, "items": 2, "brands": 1, "users": 3}, result.Rows)
	s.NotEmpty(result.Operations)

	for _, e := range model.Entities() {
		s.FileExists(filepath.Join(s.csvDir, e.CSVFile()))
		s.FileExists(filepath.Join(s.jsonDir, e.JSONFile()))

		fromJSON, err := export.ReadJSON(filepath.Join(s.jsonDir, e.JSONFile()), e)
		s.Require().NoError(err, e.Name)
		fromCSV, err := export.ReadCSV(filepath.Join(s.csvDir, e.CSVFile()), e)
		s.Require().NoError(err, e.Name)
		s.Equal(result.Rows[e.Name], fromJSON.Len(), e.Name)
		s.Equal(result.Rows[e.Name], fromCSV.Len(), e.Name)
	}

	brands, err := export.ReadCSV(filepath.Join(s.csvDir, model.Brands.CSVFile()), model.Brands)
	s.Require().NoError(err)
	s.Equal("PEPSI AND CO", brands.Rows[0][2].CSV())
	s.Equal(model.CogsRef, brands.Rows[0][6].CSV())
	s.Equal("false", brands.Rows[0][7].CSV())
}

func (s *DataCleanerSuite) TestRunAppliesDedupPolicy() {
	result, err := s.cleaner.WithDedupPolicy(DedupFirst).Run(context.Background())
	s.Require().NoError(err)
	s.Equal(2, result.Rows["users"])

	s.Run("reject stops the run", func() {
		_, err := s.cleaner.WithDedupPolicy(DedupReject).Run(context.Background())
		s.ErrorIs(err, ErrDuplicateUser)
	})
}

func (s *DataCleanerSuite) TestRunStopsAtFirstFailingStage() {
	s.Require().NoError(os.Remove(filepath.Join(s.rawDir, BrandsFile)))

	result, err := s.cleaner.Run(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, os.ErrNotExist))
	s.Contains(err.Error(), "brands stage")

	// receipts finished before the failure; users never ran
	s.Equal(2, result.Rows["receipts"])
	s.FileExists(filepath.Join(s.jsonDir, model.Receipts.JSONFile()))
	s.NoFileExists(filepath.Join(s.jsonDir, model.Users.JSONFile()))
}

func (s *DataCleanerSuite) TestRunReportsMalformedLines() {
	s.writeRaw(UsersFile, userLines[0], `{"_id":{"$oid":"u9"}`)

	_, err := s.cleaner.Run(context.Background())
	s.Require().Error(err)
	s.ErrorIs(err, rawdoc.ErrMalformedLine)

	var lineErr *rawdoc.LineError
	s.Require().ErrorAs(err, &lineErr)
	s.Equal(2, lineErr.Line)
}

func (s *DataCleanerSuite) TestRunHonoursCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.cleaner.Run(ctx)
	s.ErrorIs(err, context.Canceled)
	s.NoFileExists(filepath.Join(s.jsonDir, model.Receipts.JSONFile()))
}
