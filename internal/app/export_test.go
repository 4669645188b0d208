package service

// Evict runs one janitor pass.
var Evict = (*Service).evict
