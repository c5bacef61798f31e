// Package evaluate turns an aggregated model OD matrix and an observed
// ("truth") matrix into the single scalar an outer parameter search
// minimizes or maximizes.
//
// Two metrics are available and fixed per Evaluator:
//
//   - RMSE: Σ (model − truth)² over origins with observed trips. Not divided
//     by the cell count; smaller is better.
//   - LogLikelihood: Σ pTruth·ln(clamp(...)) over cells with pTruth > 0, using
//     an asymmetric over/under-prediction rule and a DefaultEpsilon floor.
//     Always ≤ 0; 0 is a perfect match.
//
// Rows are fanned out over a fixed worker set. Each worker keeps a local
// sum and the partials are combined once, in worker order, at the end.
//
//	tr, _ := evaluate.NewTruth(observed)
//	ev, _ := evaluate.NewEvaluator(evaluate.LogLikelihood)
//	score, err := ev.Evaluate(tr, aggregated)
package evaluate
