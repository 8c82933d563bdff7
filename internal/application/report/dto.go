package report

import (
	affiliateapp "github.com/englishbooster/affiliate/internal/application/affiliate"
	catalogapp "github.com/englishbooster/affiliate/internal/application/catalog"
	referralapp "github.com/englishbooster/affiliate/internal/application/referral"
	"github.com/englishbooster/affiliate/internal/domain/referral"
)

// CatalogStats are the public totals shown on the landing page
type CatalogStats struct {
	TotalAffiliates int64 `json:"total_affiliates"`
	TotalPrograms   int64 `json:"total_programs"`
	TotalReferrals  int64 `json:"total_referrals"`
}

// Contact is the public contact block
type Contact struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Instagram string `json:"instagram"`
	Phone     string `json:"phone"`
}

// HomeResponse is the landing page payload
type HomeResponse struct {
	Programs []catalogapp.CategoryGroup `json:"programs"`
	Stats    CatalogStats               `json:"stats"`
	Contact  Contact                    `json:"contact"`
}

// DashboardResponse is everything an affiliate sees after login
type DashboardResponse struct {
	Affiliate       affiliateapp.AffiliateResponse `json:"affiliate"`
	Programs        []catalogapp.ProgramResponse   `json:"programs"`
	ReferralLink    string                         `json:"referral_link"`
	Stats           referral.Stats                 `json:"stats"`
	RecentReferrals []referralapp.ReferralResponse `json:"recent_referrals"`
}
