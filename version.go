package coffeesave

const VERSION = "v0.3.0"

// Section is the configuration section coffeesave settings live under in the editor
const Section = "coffeesave"
