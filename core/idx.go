package core

// MaxIdx is the largest representable index.
const MaxIdx = ^IdxSize(0)

// NullIdx marks an absent index in structures that store indices inline,
// such as an optional child edge.
const NullIdx = MaxIdx
