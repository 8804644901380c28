// Package decision turns audio features and the current musical state into
// proposed parameter changes.
//
// Engine.Decide applies a fixed rule set. Each rule is evaluated on its own,
// so several decisions may be returned for one snapshot:
//
//	rms > 0.8 and intensity < 8        intensity +1          (0.7)
//	rms < 0.3 and intensity > 3        intensity -1          (0.7)
//	centroid > 3000 and cutoff > 80    cutoff -10, min 50    (0.6)
//	centroid < 1000 and cutoff < 120   cutoff +10, max 130   (0.6)
//	energy_level > 0.8                 bright key            (0.5)
//	energy_level < 0.3                 dark key              (0.5)
//	complexity > 0.7 on major          modal scale           (0.5)
//	complexity < 0.3 off major         major                 (0.5)
//
// The key and scale rules come from TheoryAdvisor, whose random choices go
// through an injectable Chooser so tests can pin them.
//
// Engine.InterpretDirective maps free text such as "faster" or "make it more
// ambient" to high-confidence decisions that callers apply immediately.
package decision
