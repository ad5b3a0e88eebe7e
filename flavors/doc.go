// Package flavors supplies the ready-made Producer implementations spec.md
// names as atom "flavors" (value, state, task, publisher,
// custom-resettable) — out of scope for the kernel itself, but owed to
// users as the "straightforward transformations" the spec describes, built
// entirely on atoms' public Producer/BaseProducer surface.
package flavors
