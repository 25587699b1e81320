// Package graphql serves the getVersesByMood query.
package graphql

const schemaSDL = `
schema {
	query: Query
}

type Query {
	_random: Float!
	getVersesByMood(mood: String!, locale: String): VerseResponse!
}

type VerseResponse {
	mood: String!
	verses: [Verse!]!
}

type Verse {
	number: Int!
	surah: Surah!
	scripts: [Script!]!
	translations: [Translation!]!
}

type Surah {
	number: Int!
}

type Script {
	name: String!
	text: String!
}

type Translation {
	languageId: String!
	text: String!
}
`

// maxQueryDepth bounds nesting; getVersesByMood.verses.surah.number is 4.
const maxQueryDepth = 4
