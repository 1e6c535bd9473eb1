// Package domain contains the core business entities of the progression
// system: a user's accumulated progress, daily challenges, achievement tiers,
// and the answer feedback produced by the grading oracle. Calculations over
// these entities live in the subpackages (progression, challenge,
// achievement, segment) and are independent of any storage or transport.
package domain
