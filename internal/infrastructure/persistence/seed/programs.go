// Package seed loads the reference data the service needs to be usable:
// the program catalog and an initial administrator.
package seed

import (
	"context"
	"fmt"

	"github.com/englishbooster/affiliate/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProgramSpec describes one catalog entry
type ProgramSpec struct {
	Name          string
	Category      catalog.Category
	Description   string
	Price         int64
	DurationWeeks int
	Location      string
}

// DefaultPrograms is the English Booster catalog
var DefaultPrograms = []ProgramSpec{
	{"Kids", catalog.CategoryOnline, "Program bahasa Inggris khusus untuk anak-anak usia 4-10 tahun", 500000, 4, ""},
	{"Teen", catalog.CategoryOnline, "Program bahasa Inggris untuk remaja usia 11-17 tahun", 600000, 6, ""},
	{"TOEFL Easy Peasy", catalog.CategoryOnline, "Persiapan TOEFL yang mudah dan efektif", 750000, 8, ""},
	{"Private", catalog.CategoryOnline, "Kelas privat one-on-one dengan tutor berpengalaman", 1000000, 4, ""},
	{"General English", catalog.CategoryOnline, "Kelas bahasa Inggris umum untuk semua level", 550000, 6, ""},
	{"Speaking Booster", catalog.CategoryOnline, "Fokus pada peningkatan kemampuan berbicara", 400000, 4, ""},
	{"Grammar Booster", catalog.CategoryOnline, "Penguasaan tata bahasa Inggris yang komprehensif", 350000, 4, ""},

	{"Paket 2 minggu", catalog.CategoryOffline, "Program intensif 2 minggu di Pare, Kediri", 800000, 2, "Pare, Kediri"},
	{"Paket 1 bulan", catalog.CategoryOffline, "Program intensif 1 bulan di Pare, Kediri", 1200000, 4, "Pare, Kediri"},
	{"Paket 2 bulan", catalog.CategoryOffline, "Program intensif 2 bulan di Pare, Kediri", 2000000, 8, "Pare, Kediri"},
	{"Paket 3 bulan", catalog.CategoryOffline, "Program intensif 3 bulan di Pare, Kediri", 2800000, 12, "Pare, Kediri"},
	{"TOEFL RPL", catalog.CategoryOffline, "Persiapan TOEFL intensif di Pare", 1500000, 6, "Pare, Kediri"},
	{"Kapal Pesiar", catalog.CategoryOffline, "Program persiapan kerja di kapal pesiar", 3000000, 12, "Pare, Kediri"},

	{"English Trip", catalog.CategoryGroup, "Program wisata sambil belajar bahasa Inggris", 2500000, 1, "Various"},
	{"Special English Day", catalog.CategoryGroup, "Acara khusus satu hari penuh bahasa Inggris", 500000, 1, "Various"},
	{"Tutor Visit", catalog.CategoryGroup, "Tutor datang ke lokasi untuk mengajar kelompok", 1500000, 4, "Client Location"},

	{"Cilukba (Pre-school / TK)", catalog.CategoryBranch, "Program untuk anak prasekolah dan TK", 400000, 4, "Branch Offices"},
	{"Hompimpa (SD)", catalog.CategoryBranch, "Program untuk siswa sekolah dasar", 450000, 4, "Branch Offices"},
	{"Hip Hip Hurray (SMP)", catalog.CategoryBranch, "Program untuk siswa sekolah menengah pertama", 500000, 6, "Branch Offices"},
	{"Insight Out (SMA)", catalog.CategoryBranch, "Program untuk siswa sekolah menengah atas", 600000, 6, "Branch Offices"},
}

// SeedPrograms upserts specs by name. Running it twice leaves one row per program.
func SeedPrograms(ctx context.Context, repo catalog.ProgramRepository, specs []ProgramSpec, log *zap.Logger) (int, error) {
	for _, s := range specs {
		p, err := catalog.NewProgram(s.Name, s.Category, s.Description, decimal.NewFromInt(s.Price), s.DurationWeeks, s.Location)
		if err != nil {
			return 0, fmt.Errorf("program %q: %w", s.Name, err)
		}
		if err := repo.Save(ctx, p); err != nil {
			return 0, fmt.Errorf("save program %q: %w", s.Name, err)
		}
		log.Debug("Program seeded", zap.String("name", s.Name), zap.String("category", string(s.Category)))
	}
	log.Info("Programs seeded", zap.Int("count", len(specs)))
	return len(specs), nil
}
