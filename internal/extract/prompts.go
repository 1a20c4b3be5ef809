package extract

// batchPrompt asks for every item mentioned across several reviews.
// Placeholders: restaurant name, comma-joined types, review text.
const batchPrompt = `Analyze these restaurant reviews and extract menu items mentioned by customers.

Restaurant: %s
Type: %s

Reviews:
%s

Extract menu items and return as a simple dictionary where key=item_name and value=description:
{
  "Item Name": "Brief description based on customer feedback (max 30 words)",
  "Another Item": "Description from reviews"
}

Rules:
1. Only items explicitly mentioned in reviews
2. Descriptions from customer feedback only
3. No pricing information
4. Max 30 words per description
5. Food/drink items only

Return only JSON dictionary, no additional text.`

// singlePrompt asks for the items mentioned in one review.
// Placeholders: restaurant name, comma-joined types, review text.
const singlePrompt = `Analyze this single restaurant review and extract any menu items mentioned.

Restaurant: %s
Type: %s

Review:
%s

Extract menu items as dictionary:
{
  "Item Name": "Brief description from review (max 20 words)"
}

Rules:
1. Only items explicitly mentioned
2. Max 20 words per description
3. No pricing information
4. Return {} if no items found

Return only JSON, no additional text.`
