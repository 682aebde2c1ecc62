// Package model loads the delinquency classifier artifact and evaluates it.
//
// The artifact is a fitted logistic-regression pipeline serialised as JSON
// (or YAML). Numeric columns are standard-scaled before their linear term;
// categorical columns are one-hot encoded, so each level carries its own
// coefficient and unseen levels contribute nothing:
//
//	{
//	  "name": "bdelinquency-logreg",
//	  "version": "2.0",
//	  "intercept": -1.1,
//	  "numeric": [{"feature": "Age", "mean": 45, "scale": 15, "coef": -0.15}, ...],
//	  "categorical": [{"feature": "Location", "levels": {"Chicago": 0.04, ...}}, ...]
//	}
//
// Load(path) reads and validates the artifact. A missing file yields
// ErrArtifactNotFound; the server treats that as fatal. The artifact must
// cover exactly the fourteen columns in Columns, with each column of the
// expected kind, or Load fails with ErrSchema.
//
// A loaded *LogisticModel is immutable and safe for concurrent use.
package model
