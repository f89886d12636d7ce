package domain

// NoneLabel buckets applicants with no value for a ranking dimension.
const NoneLabel = "NONE"

// CallRates are ratios in [0, 1]. VacancyFillRate is nil when the call has no vacancies.
type CallRates struct {
	AcceptanceRate  float64  `json:"acceptance_rate"`
	VacancyFillRate *float64 `json:"vacancy_fill_rate"`
	EnrollmentRate  float64  `json:"enrollment_rate"`
}

type RankingBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// CallDetail is the staff report for a single call.
type CallDetail struct {
	Call                 *Call           `json:"call"`
	ApplicantCount       int64           `json:"applicant_count"`
	Rates                CallRates       `json:"rates"`
	SocioeconomicRanking []RankingBucket `json:"socioeconomic_ranking"`
	CycleRanking         []RankingBucket `json:"cycle_ranking"`
	ProgramRanking       []RankingBucket `json:"program_ranking"`
}
