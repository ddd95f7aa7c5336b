package models

// ReturnSummary aggregates the forward-return sample of one horizon.
// Ties at exactly zero count toward neither UpCount nor DownCount, so
// UpCount+DownCount <= SampleSize. When the sample is empty after dropping
// missing values, SampleSize is 0, every statistic is 0 and Insufficient is
// set; nothing is ever fabricated from an empty sample.
type ReturnSummary struct {
	Horizon         int     `json:"horizon"`
	SampleSize      int     `json:"sample_size"`
	UpCount         int     `json:"up_count"`
	DownCount       int     `json:"down_count"`
	UpProbability   float64 `json:"up_probability"`
	DownProbability float64 `json:"down_probability"`
	Mean            float64 `json:"mean"`
	Median          float64 `json:"median"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	StdDev          float64 `json:"std_dev"` // sample stddev (ddof=1); 0 for n < 2
	P25             float64 `json:"p25"`
	P75             float64 `json:"p75"`
	Insufficient    bool    `json:"insufficient"`
}
