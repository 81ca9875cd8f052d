package morph

import "codemorph/internal/language"

// Sample is a built-in snippet offered by LoadSample.
type Sample struct {
	Language language.Tag
	Code     string
}

// Samples are cycled in order.
var Samples = []Sample{
	{
		Language: language.JavaScript,
		Code: `// Inefficient React component
function ProductList({ products }) {
  const [filtered, setFiltered] = React.useState(products);
  
  const filterProducts = (query) => {
    const result = products.filter(p => 
      p.name.toLowerCase().includes(query.toLowerCase())
    );
    setFiltered(result);
  };
  
  return (
    <div>
      <input onChange={(e) => filterProducts(e.target.value)} />
      {filtered.map(product => (
        <div key={product.id}>
          <img src={product.image} />
          <h3>{product.name}</h3>
          <p>{product.description}</p>
        </div>
      ))}
    </div>
  );
}`,
	},
	{
		Language: language.Python,
		Code: `# Inefficient data processing
def process_users(users):
    result = []
    for user in users:
        if user['age'] > 18:
            full_name = user['first_name'] + ' ' + user['last_name']
            result.append({
                'name': full_name,
                'email': user['email']
            })
    return result`,
	},
}
