package cmd

import (
	"github.com/etnz/simbooks/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the sbk command line.
//
// Install it with COMP_INSTALL=1 sbk.
func Completion() *complete.Command {
	csv := predict.Files("*.csv")
	json := predict.Files("*.json")
	toml := predict.Files("*.toml")

	records := map[string]complete.Predictor{
		"tx":       csv,
		"mv":       csv,
		"snapshot": json,
		"from":     predict.Something,
		"to":       predict.Something,
	}
	compute := map[string]complete.Predictor{
		"html": predict.Files("*.html"),
		"csv":  csv,
	}
	for k, v := range records {
		compute[k] = v
	}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"config": toml,
			"realm":  predict.Set{"0", "1"},
		},
		Sub: map[string]*complete.Command{
			"compute": {Flags: compute},
			"cogs": {Flags: map[string]complete.Predictor{
				"mv":   csv,
				"from": predict.Something,
				"to":   predict.Something,
			}},
			"valuation": {Flags: map[string]complete.Predictor{"snapshot": json}},
			"prices":    {Flags: map[string]complete.Predictor{"d": predict.Something}},
			"host":      {},
			"topic":     {Args: predict.Set(append(docs.Topics(), "*"))},
		},
	}
}
